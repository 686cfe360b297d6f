// Package pipeline runs the workflow steps in order.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Step is one named stage of the workflow.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Run executes steps sequentially and stops at the first failure. The
// returned error names the failing step. Cancelling ctx stops the pipeline
// before the next step starts.
func Run(ctx context.Context, steps []Step) error {
	start := time.Now()
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		logrus.Infof("[%d/%d] %s", i+1, len(steps), s.Name)
		t0 := time.Now()
		if err := s.Run(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		logrus.Debugf("%s finished in %v", s.Name, time.Since(t0).Round(time.Millisecond))
	}
	logrus.Infof("Workflow finished in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
