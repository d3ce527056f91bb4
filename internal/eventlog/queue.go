package eventlog

type streamQueue struct {
	lines chan []byte
	done  chan struct{}
}

// startQueue runs the single writer of stream. Lines are written in the
// order they were queued.
func (s *Store) startQueue(stream string) *streamQueue {
	q := &streamQueue{
		lines: make(chan []byte, s.queueSize),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(q.done)
		for line := range q.lines {
			s.writeLine(stream, line)
		}
	}()
	return q
}
