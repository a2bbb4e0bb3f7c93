// Package mediaprobe reads container metadata from media files.
//
// The FFprobe prober runs the ffprobe binary and decodes its JSON report.
// The element builder uses a Prober to fill in track durations when a track
// is built from a local file.
package mediaprobe
