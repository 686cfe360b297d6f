package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func recorder(order *[]string, name string, err error) Step {
	return Step{Name: name, Run: func(context.Context) error {
		*order = append(*order, name)
		return err
	}}
}

func TestRun_InOrder(t *testing.T) {
	var order []string
	err := Run(context.Background(), []Step{
		recorder(&order, "download", nil),
		recorder(&order, "micromodel", nil),
		recorder(&order, "plot", nil),
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"download", "micromodel", "plot"}, order)
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	err := Run(context.Background(), []Step{
		recorder(&order, "download", nil),
		recorder(&order, "micromodel", boom),
		recorder(&order, "plot", nil),
	})
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "micromodel: boom")
	assert.Equal(t, []string{"download", "micromodel"}, order)
}

func TestRun_CancelledBeforeNextStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var order []string
	err := Run(ctx, []Step{
		{Name: "download", Run: func(context.Context) error {
			order = append(order, "download")
			cancel()
			return nil
		}},
		recorder(&order, "micromodel", nil),
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"download"}, order)
}

func TestRun_Empty(t *testing.T) {
	assert.NoError(t, Run(context.Background(), nil))
}
