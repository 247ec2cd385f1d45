package hypothesis

import (
	"github.com/eaglevariant/eagle/encoding/bam"
	"github.com/eaglevariant/eagle/encoding/bamprovider"
	"github.com/pkg/errors"
)

// BAMFetcher implements ReadFetcher over a bamprovider.Provider. It is safe
// for concurrent use by multiple workers: bamprovider.Provider serializes
// its own iterator allocation internally.
type BAMFetcher struct {
	Provider bamprovider.Provider
}

// Fetch returns the reads whose alignment overlaps the half-open region
// [start, end) on chr.
func (f *BAMFetcher) Fetch(chr string, start, end int) ([]*Read, error) {
	header, err := f.Provider.GetHeader()
	if err != nil {
		return nil, errors.Wrap(err, "hypothesis: failed to read BAM header")
	}
	ref := bamprovider.RefByName(header, chr)
	if ref == nil {
		return nil, errors.Errorf("hypothesis: chromosome %q not found in BAM header", chr)
	}

	shard := bam.Shard{StartRef: ref, EndRef: ref, Start: start, End: end}
	iter := f.Provider.NewIterator(shard)
	defer iter.Close()

	var reads []*Read
	for iter.Scan() {
		reads = append(reads, FromRecord(iter.Record(), chr))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "hypothesis: error scanning region %s:%d-%d", chr, start, end)
	}
	return reads, nil
}
