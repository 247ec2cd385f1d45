package bamprovider

import (
	gbam "github.com/eaglevariant/eagle/encoding/bam"
	"github.com/grailbio/hts/sam"
)

// ProviderOpts defines options for NewProvider.
type ProviderOpts struct {
	// Index specifies the name of the BAM index file. If "", it defaults to
	// path + ".bai".
	Index string

	// DropFields is accepted but not used: BAMProvider fills every field of
	// sam.Record.
	DropFields []gbam.FieldType
}

// ShardStrategy selects how GenerateShards splits a BAM file.
type ShardStrategy int

const (
	// PositionBased splits the genome into shards of roughly equal
	// reference-coordinate span.
	PositionBased ShardStrategy = iota
	// ByteBased splits the file into shards of roughly equal compressed
	// byte size, using the BAI index.
	ByteBased
)

// GenerateShardsOpts defines behavior of Provider.GenerateShards.
type GenerateShardsOpts struct {
	Strategy ShardStrategy
	// BytesPerShard is the target shard size for the ByteBased strategy.
	BytesPerShard int64
	// MinBasesPerShard is the minimum reference span for the ByteBased
	// strategy.
	MinBasesPerShard int
	Padding          int
	// IncludeUnmapped causes GenerateShards() to produce shards for the
	// unmapped && mate-unmapped reads.
	IncludeUnmapped bool
}

// Provider allows reading an indexed, coordinate-sorted BAM file. Thread safe.
type Provider interface {
	// GetHeader returns the header for the provided BAM data.  The callee
	// must not modify the returned header object.
	GetHeader() (*sam.Header, error)

	// GenerateShards prepares for parallel reading of genomic data.
	GenerateShards(opts GenerateShardsOpts) ([]gbam.Shard, error)

	// NewIterator returns an iterator over records contained in the shard.
	NewIterator(shard gbam.Shard) Iterator

	// Close must be called exactly once.
	//
	// REQUIRES: All the iterators created by NewIterator have been closed.
	Close() error
}

// Iterator iterates over sam.Records in a particular genomic range, in
// coordinate order. Thread compatible.
type Iterator interface {
	// Scan returns whether there are any records remaining in the iterator,
	// and if so, advances the iterator to the next record.
	Scan() bool

	// Record returns the current record in the iterator. Valid only after a
	// call to Scan() returns true.
	Record() *sam.Record

	// Err returns the error encountered during iteration, or nil if no error
	// occurred. An io.EOF error is translated to nil.
	Err() error

	// Close must be called exactly once. It returns the value of Err().
	Close() error
}

// NewProvider creates a Provider for the BAM file at path.
func NewProvider(path string, optList ...ProviderOpts) Provider {
	var opts ProviderOpts
	for _, o := range optList {
		if o.Index != "" {
			opts.Index = o.Index
		}
		opts.DropFields = append(opts.DropFields, o.DropFields...)
	}
	return &BAMProvider{Path: path, Index: opts.Index}
}
