package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceReusesValueWithinWindow(t *testing.T) {
	fetches := 0
	value := "first"
	s := newSource(time.Minute, func(ctx context.Context) (*string, error) {
		fetches++
		v := value
		return &v, nil
	})

	got, err := s.refresh(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, "first", *got)

	value = "second"
	got, err = s.refresh(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "first", *got, "fresh value must be reused")
	assert.Equal(t, 1, fetches)
}

func TestSourceForceBypassesWindow(t *testing.T) {
	fetches := 0
	s := newSource(time.Minute, func(ctx context.Context) (*int, error) {
		fetches++
		v := fetches
		return &v, nil
	})

	_, err := s.refresh(context.Background(), false)
	require.NoError(t, err)
	got, err := s.refresh(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, *got)
}

func TestSourceKeepsPreviousValueOnError(t *testing.T) {
	fail := false
	s := newSource(0, func(ctx context.Context) (*string, error) {
		if fail {
			return nil, errors.New("backend unavailable")
		}
		v := "cached"
		return &v, nil
	})

	_, err := s.refresh(context.Background(), true)
	require.NoError(t, err)

	fail = true
	got, err := s.refresh(context.Background(), true)
	require.Error(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "cached", *got)
	assert.Equal(t, "cached", *s.get())
}

func TestSourceInvalidateExpiresWindow(t *testing.T) {
	fetches := 0
	s := newSource(time.Minute, func(ctx context.Context) (*int, error) {
		fetches++
		v := fetches
		return &v, nil
	})

	_, err := s.refresh(context.Background(), false)
	require.NoError(t, err)

	s.invalidate()
	_, err = s.refresh(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}

func TestSourceSeed(t *testing.T) {
	s := newSource[string](time.Minute, func(ctx context.Context) (*string, error) {
		t.Fatal("fetch must not run after seed")
		return nil, nil
	})

	seeded := "seeded"
	s.seed(&seeded)

	got, err := s.refresh(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "seeded", *got)
}
