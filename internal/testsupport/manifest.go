package testsupport

import (
	"path/filepath"
	"testing"

	"mpkg/internal/identifier"
	"mpkg/internal/manifest"
)

// FixtureID is the package identifier used by SampleManifest.
const FixtureID = "5f1c2a3e-9b8d-4c7e-a6f5-0123456789ab"

// SampleManifest builds a small package rooted at dir: a presenter source
// track, a derived delivery track, an episode catalog, and a preview
// attachment referring to the delivery track. The media files are written
// so builders that inspect locators find them.
func SampleManifest(t testing.TB, dir string) *manifest.Manifest {
	t.Helper()

	id, err := identifier.UUIDBuilder{}.Parse(FixtureID)
	if err != nil {
		t.Fatalf("parse fixture id: %v", err)
	}
	m := manifest.New(id)

	source := manifest.NewTrack(manifest.NewFlavor("presenter", "source"), filepath.Join(dir, "presenter.mp4"))
	source.SetDuration(60000)
	source.SetMimeType("video/mp4")
	delivery := manifest.NewTrack(manifest.NewFlavor("presenter", "delivery"), filepath.Join(dir, "presenter-720p.mp4"))
	delivery.SetDuration(60000)
	delivery.AddTag("engage")
	catalog := manifest.NewCatalog(manifest.NewFlavor("dublincore", "episode"), filepath.Join(dir, "episode.xml"))
	catalog.SetMimeType("text/xml")
	preview := manifest.NewAttachment(manifest.NewFlavor("presenter", "preview"), filepath.Join(dir, "preview.png"))
	preview.SetMimeType("image/png")

	for _, el := range []manifest.Element{source, delivery, catalog, preview} {
		WriteElementFile(t, el, 64)
	}
	mustAdd(t, m, source)
	delivery.ReferTo(manifest.ReferenceTo(source))
	mustAdd(t, m, delivery)
	mustAdd(t, m, catalog)
	preview.ReferTo(manifest.ReferenceTo(delivery))
	mustAdd(t, m, preview)
	return m
}

func mustAdd(t testing.TB, m *manifest.Manifest, el manifest.Element) {
	t.Helper()
	if err := m.Add(el); err != nil {
		t.Fatalf("add %s: %v", el.Kind(), err)
	}
}
