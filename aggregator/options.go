package aggregator

import "time"

// Options tunes the aggregator.
//
// Fields:
// - SoftDeadline: how long Refresh waits for sources before using partial results.
// - MetadataConcurrency: how many faucets are resolved at once.
// - ViewTTL: how long a cached view stays fresh.
// - DeletedTTL: how long the deleted faucet list stays fresh.
// - NameCheck: settings of the name existence check.
type Options struct {
	SoftDeadline        time.Duration
	MetadataConcurrency int
	ViewTTL             time.Duration
	DeletedTTL          time.Duration
	NameCheck           NameCheckOptions
}

// NameCheckOptions tunes the name existence check.
//
// Fields:
// - BatchSize: how many faucet details are read per batch.
// - BatchDelay: pause between two batches.
// - SampleThreshold: factories with more faucets than this are only sampled.
// - SampleSize: how many faucets are read from a sampled factory.
type NameCheckOptions struct {
	BatchSize       int
	BatchDelay      time.Duration
	SampleThreshold int
	SampleSize      int
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		SoftDeadline:        45 * time.Second,
		MetadataConcurrency: 8,
		ViewTTL:             5 * time.Minute,
		DeletedTTL:          5 * time.Minute,
		NameCheck:           DefaultNameCheckOptions(),
	}
}

// DefaultNameCheckOptions returns the production name check settings.
func DefaultNameCheckOptions() NameCheckOptions {
	return NameCheckOptions{
		BatchSize:       5,
		BatchDelay:      200 * time.Millisecond,
		SampleThreshold: 50,
		SampleSize:      20,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SoftDeadline <= 0 {
		o.SoftDeadline = d.SoftDeadline
	}
	if o.MetadataConcurrency <= 0 {
		o.MetadataConcurrency = d.MetadataConcurrency
	}
	if o.ViewTTL <= 0 {
		o.ViewTTL = d.ViewTTL
	}
	if o.DeletedTTL <= 0 {
		o.DeletedTTL = d.DeletedTTL
	}
	o.NameCheck = o.NameCheck.withDefaults()
	return o
}

func (o NameCheckOptions) withDefaults() NameCheckOptions {
	d := DefaultNameCheckOptions()
	if o.BatchSize <= 0 {
		o.BatchSize = d.BatchSize
	}
	if o.BatchDelay <= 0 {
		o.BatchDelay = d.BatchDelay
	}
	if o.SampleThreshold <= 0 {
		o.SampleThreshold = d.SampleThreshold
	}
	if o.SampleSize <= 0 {
		o.SampleSize = d.SampleSize
	}
	return o
}
