package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/camadaviva/snaps/internal/api"
	"github.com/camadaviva/snaps/internal/convert"
	"github.com/camadaviva/snaps/internal/errs"
	"github.com/camadaviva/snaps/internal/model"
	"gopkg.in/yaml.v3"
)

func checkOutput(format string) error {
	switch format {
	case "json", "yaml":
		return nil
	default:
		return fmt.Errorf("--output %q: want json or yaml: %w", format, errs.ErrInvalid)
	}
}

// emit writes v as indented JSON or as YAML. YAML keeps the JSON field names
// and order because it is decoded from the JSON document.
func emit(w io.Writer, format string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if format != "yaml" {
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return err
	}
	blockStyle(&doc)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting styles inherited from the JSON source.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

type viewerOut struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func toViewerOut(v model.Viewer) viewerOut {
	return viewerOut{UserID: v.ID.String(), Email: v.Email}
}

func snapsOut(in []model.Snap) []api.Snap {
	return convert.ToAPISnapList(in).Snaps
}

type detailOut struct {
	Snap     api.Snap      `json:"snap"`
	Comments []api.Comment `json:"comments"`
	Vote     string        `json:"vote"`
	Saved    bool          `json:"saved"`
	Owner    bool          `json:"owner"`
}

type voteOut struct {
	SnapID string `json:"snap_id"`
	Vote   string `json:"vote"`
	Score  int    `json:"score"`
}

type profileOut struct {
	Profile *api.Profile `json:"profile"`
	Snaps   []api.Snap   `json:"snaps,omitempty"`
}
