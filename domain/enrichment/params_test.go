package enrichment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"tfea/domain/core"
)

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Params)
		wantErr error
	}{
		{"defaults are valid", func(p *Params) {}, nil},
		{"inner equals outer", func(p *Params) { p.InnerWindow = p.OuterWindow }, core.ErrInvalidWindow},
		{"inner is zero", func(p *Params) { p.InnerWindow = 0 }, core.ErrInvalidWindow},
		{"no permutations", func(p *Params) { p.Permutations = 0 }, core.ErrInvalidParameter},
		{"negative trial workers", func(p *Params) { p.TrialWorkers = -1 }, core.ErrInvalidParameter},
		{"zero fdr cutoff", func(p *Params) { p.FDRCutoff = 0 }, core.ErrInvalidParameter},
		{"pvalue cutoff above one", func(p *Params) { p.PValueCutoff = 1.5 }, core.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestParamsFingerprintIgnoresWorkers(t *testing.T) {
	a := DefaultParams()
	b := DefaultParams()
	b.TrialWorkers = 8
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Permutations = 500
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestRunSignificantResults(t *testing.T) {
	run := &Run{
		Results: []Result{
			{MotifID: "A", Significant: true},
			{MotifID: "B"},
			{MotifID: "C", Significant: true},
		},
		Skipped: []core.MotifID{"D"},
		Failed:  []Failure{{MotifID: "E", Reason: "degenerate"}},
	}

	sig := run.SignificantResults()
	assert.Len(t, sig, 2)
	assert.Equal(t, core.MotifID("A"), sig[0].MotifID)
	assert.Equal(t, core.MotifID("C"), sig[1].MotifID)
	assert.Equal(t, 5, run.MotifCount())
}
