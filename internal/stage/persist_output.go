package stage

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"

	"github.com/flarebyte/shoggoth/internal/manifest"
)

const persistOutputStage = "persist-output"

// copyAtomic copies src to dst through a temp file in dst's directory and
// returns the byte count and BLAKE3 digest of the content.
func copyAtomic(src, dst string) (int64, string, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, "", err
	}
	in, err := os.Open(src)
	if err != nil {
		return 0, "", err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+"-*")
	if err != nil {
		return 0, "", err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	h := blake3.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), in)
	if err != nil {
		_ = tmp.Close()
		return 0, "", err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return 0, "", err
	}
	if err := tmp.Close(); err != nil {
		return 0, "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return 0, "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

func persistOutputRunner(_ context.Context, in Envelope, _ Deps) (Envelope, error) {
	s, err := settings(in)
	if err != nil {
		return Envelope{}, err
	}
	if in.Archive == "" {
		return Envelope{}, errMissing("merged archive")
	}
	n, digest, err := copyAtomic(in.Archive, s.Out)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to persist %s: %w", s.Out, err)
	}
	rep := &Report{
		Archive:   s.Out,
		Size:      n,
		SizeHuman: humanize.Bytes(uint64(n)),
		Blake3:    digest,
		Dropped:   len(in.Dropped),
	}
	if in.Plan != nil {
		rep.WholeArchives = len(in.Plan.WholeArchives)
		rep.Archives = len(in.Plan.Archives)
		rep.Objects = len(in.Plan.Objects)
	}
	log.Notice("wrote %s (%s)", s.Out, rep.SizeHuman)

	if s.Manifest != "" {
		body := struct {
			Report  *Report `json:"report"`
			Plan    any     `json:"plan"`
			Dropped any     `json:"dropped,omitempty"`
		}{Report: rep, Plan: in.Plan, Dropped: in.Dropped}
		if err := manifest.Write(s.Manifest, "merge", body); err != nil {
			return Envelope{}, fmt.Errorf("failed to write manifest %s: %w", s.Manifest, err)
		}
	}
	out := in
	out.Report = rep
	return out, nil
}

func init() { Register(persistOutputStage, persistOutputRunner) }
