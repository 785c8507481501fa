package testutil

import (
	"context"
	"sync"
)

// Confirmer answers questions from a fixed queue and records every question.
// When the queue is exhausted it answers Default.
type Confirmer struct {
	mu        sync.Mutex
	Answers   []bool
	Default   bool
	Questions []string
}

func (c *Confirmer) Confirm(_ context.Context, question string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Questions = append(c.Questions, question)
	if len(c.Answers) == 0 {
		return c.Default, nil
	}
	a := c.Answers[0]
	c.Answers = c.Answers[1:]
	return a, nil
}

// Asked returns the number of questions seen so far.
func (c *Confirmer) Asked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Questions)
}
