package main

import (
	"strconv"
	"strings"

	"mpkg/internal/manifest"
	"mpkg/internal/manifestxml"
	"mpkg/internal/mediapackage"
)

type elementView struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Flavor      string   `json:"flavor,omitempty"`
	URI         string   `json:"uri,omitempty"`
	MimeType    string   `json:"mimetype,omitempty"`
	Size        int64    `json:"size,omitempty"`
	Checksum    string   `json:"checksum,omitempty"`
	Duration    int64    `json:"duration,omitempty"`
	Reference   string   `json:"ref,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
}

type packageView struct {
	ID       string         `json:"id"`
	Start    string         `json:"start,omitempty"`
	Duration int64          `json:"duration"`
	Counts   map[string]int `json:"counts"`
	Elements []elementView  `json:"elements"`
}

func newElementView(el manifest.Element) elementView {
	view := elementView{
		ID:          el.ID(),
		Kind:        el.Kind().String(),
		URI:         el.URI(),
		MimeType:    el.MimeType(),
		Tags:        el.Tags(),
		Description: el.Description(),
	}
	if !el.Flavor().IsZero() {
		view.Flavor = el.Flavor().String()
	}
	if el.Size() > 0 {
		view.Size = el.Size()
	}
	if !el.Checksum().IsZero() {
		view.Checksum = el.Checksum().String()
	}
	if ref := el.Reference(); ref != nil {
		view.Reference = ref.String()
	}
	if track, ok := el.(*manifest.Track); ok && track.Duration() > 0 {
		view.Duration = track.Duration()
	}
	return view
}

func newElementViews(elements []manifest.Element) []elementView {
	views := make([]elementView, 0, len(elements))
	for _, el := range elements {
		views = append(views, newElementView(el))
	}
	return views
}

func newPackageView(p *mediapackage.Package) packageView {
	m := p.Manifest()
	view := packageView{
		ID:       p.ID().String(),
		Duration: m.Duration(),
		Counts:   make(map[string]int, len(manifest.Kinds)),
		Elements: newElementViews(m.Elements()),
	}
	if start := m.Start(); !start.IsZero() {
		view.Start = manifestxml.FormatTime(start)
	}
	for _, kind := range manifest.Kinds {
		view.Counts[kind.String()] = m.Count(kind)
	}
	return view
}

var elementHeaders = []string{"ID", "Kind", "Flavor", "Size", "Duration", "Ref", "Tags", "Location"}

var elementAligns = []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft}

func elementRows(views []elementView) [][]string {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			v.ID,
			v.Kind,
			v.Flavor,
			formatOptionalInt(v.Size),
			formatOptionalInt(v.Duration),
			v.Reference,
			strings.Join(v.Tags, ","),
			v.URI,
		})
	}
	return rows
}

func formatOptionalInt(v int64) string {
	if v <= 0 {
		return "-"
	}
	return strconv.FormatInt(v, 10)
}
