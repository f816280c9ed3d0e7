package domain

// Batch is an aggregate of envelopes ready to be published together.
type Batch struct {
	// Envelopes contains the decoded messages in arrival order.
	Envelopes []Envelope

	// TotalBytes is the sum of all envelope wire sizes.
	TotalBytes int
}

// NewBatch creates a new empty batch.
func NewBatch() *Batch {
	return &Batch{
		Envelopes: make([]Envelope, 0),
	}
}

// Add appends an envelope to the batch.
func (b *Batch) Add(env Envelope) {
	b.Envelopes = append(b.Envelopes, env)
	b.TotalBytes += env.WireBytes
}

// Size returns the number of envelopes in the batch.
func (b *Batch) Size() int {
	return len(b.Envelopes)
}

// Empty returns true if the batch has no envelopes.
func (b *Batch) Empty() bool {
	return len(b.Envelopes) == 0
}

// Reset clears the batch for reuse.
func (b *Batch) Reset() {
	b.Envelopes = b.Envelopes[:0]
	b.TotalBytes = 0
}

// Last returns the last envelope in the batch, or nil if empty.
func (b *Batch) Last() *Envelope {
	if len(b.Envelopes) == 0 {
		return nil
	}
	return &b.Envelopes[len(b.Envelopes)-1]
}
