package stage

import (
	"github.com/flarebyte/shoggoth/internal/cmdline"
	"github.com/flarebyte/shoggoth/internal/compdb"
	"github.com/flarebyte/shoggoth/internal/config"
	"github.com/flarebyte/shoggoth/internal/filter"
	"github.com/flarebyte/shoggoth/internal/gypi"
	"github.com/flarebyte/shoggoth/internal/logging"
)

var log = logging.Log

// Meta holds run settings and progress with deterministic JSON field order.
type Meta struct {
	ContractVersion string           `json:"contractVersion,omitempty"`
	Stage           string           `json:"stage,omitempty"`
	Settings        *config.Settings `json:"settings,omitempty"`
}

// Report describes the persisted archive.
type Report struct {
	Archive       string `json:"archive"`
	Size          int64  `json:"size"`
	SizeHuman     string `json:"sizeHuman"`
	Blake3        string `json:"blake3"`
	WholeArchives int    `json:"wholeArchives"`
	Archives      int    `json:"archives"`
	Objects       int    `json:"objects"`
	Dropped       int    `json:"dropped"`
}

// Envelope is the state handed from stage to stage. The full compile
// database is kept out of the JSON form; it can be tens of megabytes.
type Envelope struct {
	Meta        *Meta             `json:"meta,omitempty"`
	BuildConfig *gypi.BuildConfig `json:"buildConfig,omitempty"`
	Records     []compdb.Record   `json:"-"`
	RecordCount int               `json:"recordCount,omitempty"`
	Record      *compdb.Record    `json:"record,omitempty"`
	Plan        *cmdline.LinkPlan `json:"plan,omitempty"`
	Dropped     []filter.Dropped  `json:"dropped,omitempty"`
	ScratchDir  string            `json:"scratchDir,omitempty"`
	Flattened   []string          `json:"flattened,omitempty"`
	Archive     string            `json:"archive,omitempty"`
	Report      *Report           `json:"report,omitempty"`
}

// New returns the initial envelope for a run.
func New(s config.Settings) Envelope {
	return Envelope{Meta: &Meta{ContractVersion: "1", Settings: &s}}
}

// settings returns the run settings or an error when the envelope has none.
func settings(in Envelope) (*config.Settings, error) {
	if in.Meta == nil || in.Meta.Settings == nil {
		return nil, errMissing("settings")
	}
	return in.Meta.Settings, nil
}
