package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mpkg/internal/config"
	"mpkg/internal/manifest"
	"mpkg/internal/manifestxml"
	"mpkg/internal/mediapackage"
	"mpkg/internal/testsupport"
)

type cliTestEnv struct {
	cfg          *config.Config
	configPath   string
	packageDir   string
	manifestPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	packageDir := filepath.Join(cfg.Paths.WorkspaceDir, "lecture-1")
	m := testsupport.SampleManifest(t, packageDir)
	p := mediapackage.Wrap(m, mediapackage.WithRenderContext(manifestxml.RenderContext{BaseDir: packageDir}))
	manifestPath := filepath.Join(packageDir, "manifest.xml")
	if err := p.SaveFile(context.Background(), manifestPath); err != nil {
		t.Fatalf("save fixture manifest: %v", err)
	}

	return &cliTestEnv{
		cfg:          cfg,
		configPath:   configPath,
		packageDir:   packageDir,
		manifestPath: manifestPath,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nworkspace_dir = %q\nlog_dir = %q\n\n[logging]\nlevel = %q\n\n[manifest]\nchecksum_algorithm = %q\n",
		cfg.Paths.WorkspaceDir,
		cfg.Paths.LogDir,
		"warn",
		manifest.ChecksumSHA256,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", substr, output)
	}
}

func TestInspectTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"inspect", env.manifestPath}, env.configPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, testsupport.FixtureID)
	requireContains(t, out, "Tracks:      2")
	requireContains(t, out, "Catalogs:    1")
	requireContains(t, out, "presenter/delivery")
	requireContains(t, out, "track:track-1")
	requireContains(t, out, filepath.Join(env.packageDir, "preview.png"))
}

func TestInspectJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"inspect", env.manifestPath, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("inspect --json: %v", err)
	}
	var view packageView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if view.ID != testsupport.FixtureID || view.Duration != 60000 {
		t.Fatalf("unexpected package view: %+v", view)
	}
	if view.Counts["track"] != 2 || view.Counts["attachment"] != 1 || len(view.Elements) != 4 {
		t.Fatalf("unexpected counts %v with %d elements", view.Counts, len(view.Elements))
	}
	for _, el := range view.Elements {
		if el.Size != 64 || !strings.HasPrefix(el.Checksum, "sha256:") {
			t.Fatalf("expected file facts on %s: size=%d checksum=%q", el.ID, el.Size, el.Checksum)
		}
	}
}

func TestValidateReportsOffendingElement(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"validate", env.manifestPath}, env.configPath)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	requireContains(t, out, "Manifest valid")

	broken := filepath.Join(env.packageDir, "broken.xml")
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<mediapackage id="` + testsupport.FixtureID + `">
  <metadata>
    <catalog id="catalog-1" type="dublincore/episode"><mimetype>text/xml</mimetype></catalog>
  </metadata>
</mediapackage>
`
	if err := os.WriteFile(broken, []byte(doc), 0o644); err != nil {
		t.Fatalf("write broken manifest: %v", err)
	}

	_, _, err = runCLI(t, []string{"validate", broken}, env.configPath)
	if err == nil {
		t.Fatalf("expected validate to fail on a catalog without location")
	}
	requireContains(t, err.Error(), "catalog element 1 (not_found)")

	out, _, err = runCLI(t, []string{"validate", broken, "--lenient"}, env.configPath)
	if err != nil {
		t.Fatalf("validate --lenient: %v", err)
	}
	requireContains(t, out, "Elements: 0")
}

func TestAddAndRemove(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(t.TempDir(), "pkg", "manifest.xml")
	media := filepath.Join(env.packageDir, "slides.pdf")
	testsupport.WriteFile(t, media, 128)

	out, _, err := runCLI(t, []string{
		"add", target, media,
		"--kind", "attachment",
		"--flavor", "presentation/slides",
		"--tag", "engage",
		"--ref", "track:track-1",
	}, env.configPath)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "Added attachment attachment-1")

	p, err := mediapackage.LoadFile(target)
	if err != nil {
		t.Fatalf("load created manifest: %v", err)
	}
	el, ok := p.Manifest().ByID(manifest.KindAttachment, "attachment-1")
	if !ok {
		t.Fatalf("attachment missing from manifest")
	}
	if el.Size() != 128 || el.Checksum().Type != manifest.ChecksumSHA256 || !el.HasTag("engage") || el.MimeType() != "application/pdf" {
		t.Fatalf("unexpected attachment: size=%d checksum=%s tags=%v mimetype=%q", el.Size(), el.Checksum(), el.Tags(), el.MimeType())
	}
	if ref := el.Reference(); ref == nil || ref.String() != "track:track-1" {
		t.Fatalf("unexpected reference %v", el.Reference())
	}

	out, _, err = runCLI(t, []string{"remove", target, "attachment-1"}, env.configPath)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	requireContains(t, out, "Removed attachment attachment-1")

	if _, _, err := runCLI(t, []string{"remove", target, "attachment-1"}, env.configPath); err == nil {
		t.Fatalf("expected removing an absent element to fail")
	}
	p, err = mediapackage.LoadFile(target)
	if err != nil {
		t.Fatalf("reload manifest: %v", err)
	}
	if p.Manifest().Size() != 0 {
		t.Fatalf("expected empty manifest, got %d elements", p.Manifest().Size())
	}
}

func TestAddMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(t.TempDir(), "manifest.xml")

	_, _, err := runCLI(t, []string{"add", target, filepath.Join(env.packageDir, "absent.mp4"), "--kind", "track", "--flavor", "presenter/source"}, env.configPath)
	if err == nil {
		t.Fatalf("expected add of a missing file to fail")
	}
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Fatalf("failed add must not create the manifest: %v", statErr)
	}
}

func TestRefsFollowsDerivation(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"refs", env.manifestPath, "track:track-1", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("refs: %v", err)
	}
	var direct []elementView
	if err := json.Unmarshal([]byte(out), &direct); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(direct) != 1 || direct[0].ID != "track-2" {
		t.Fatalf("unexpected direct matches %+v", direct)
	}

	out, _, err = runCLI(t, []string{"refs", env.manifestPath, "track:track-1", "--derived", "--kind", "attachment", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("refs --derived: %v", err)
	}
	var derived []elementView
	if err := json.Unmarshal([]byte(out), &derived); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(derived) != 1 || derived[0].ID != "attachment-1" {
		t.Fatalf("unexpected derived matches %+v", derived)
	}

	out, _, err = runCLI(t, []string{"refs", env.manifestPath, "catalog:catalog-1"}, env.configPath)
	if err != nil {
		t.Fatalf("refs: %v", err)
	}
	requireContains(t, out, "No elements refer to catalog:catalog-1")
}

func TestConfigInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatalf("expected init to refuse overwriting")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.configPath)
	requireContains(t, out, "checksum_algorithm")
	requireContains(t, out, "sha256")
	requireContains(t, out, env.cfg.Paths.WorkspaceDir)
}

func TestAddProbesTrackDuration(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(t.TempDir(), "manifest.xml")
	stub := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho '{\"format\":{\"duration\":\"90.0\"}}'\n"), 0o755); err != nil {
		t.Fatalf("write ffprobe stub: %v", err)
	}

	_, _, err := runCLI(t, []string{
		"add", target, filepath.Join(env.packageDir, "presenter.mp4"),
		"--kind", "track", "--flavor", "presenter/source",
		"--probe", "--ffprobe", stub,
	}, env.configPath)
	if err != nil {
		t.Fatalf("add --probe: %v", err)
	}
	p, err := mediapackage.LoadFile(target)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if p.Manifest().Duration() != 90000 {
		t.Fatalf("expected package duration from the probed track, got %d", p.Manifest().Duration())
	}
	el, ok := p.Manifest().ByID(manifest.KindTrack, "track-1")
	if !ok || el.(*manifest.Track).Duration() != 90000 {
		t.Fatalf("expected probed track duration, got %+v", el)
	}
}

func TestAddCopiesIntoWorkspacePackage(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(t.TempDir(), "episode.xml")
	if err := os.WriteFile(src, []byte("<dublincore/>\n"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	out, _, err := runCLI(t, []string{"add", "lecture-2", src, "--kind", "catalog", "--flavor", "dublincore/episode", "--copy"}, env.configPath)
	if err != nil {
		t.Fatalf("add --copy: %v", err)
	}
	requireContains(t, out, "Added catalog catalog-1")

	packageDir := filepath.Join(env.cfg.Paths.WorkspaceDir, "lecture-2")
	copied := filepath.Join(packageDir, "episode.xml")
	if _, err := os.Stat(copied); err != nil {
		t.Fatalf("expected copy at %s: %v", copied, err)
	}
	data, err := os.ReadFile(filepath.Join(packageDir, "manifest.xml"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	requireContains(t, string(data), "<url>episode.xml</url>")

	out, _, err = runCLI(t, []string{"inspect", "lecture-2"}, env.configPath)
	if err != nil {
		t.Fatalf("inspect by package name: %v", err)
	}
	requireContains(t, out, copied)
}
