package question

import (
	"context"
	"errors"
	"fmt"
	"time"

	retry "github.com/sethvargo/go-retry"

	"github.com/Yo1k/qaws/internal/logging"
	"github.com/Yo1k/qaws/internal/question/external"
)

var (
	// ErrFetchFailed reports that the source failed before a single new
	// question was accumulated.
	ErrFetchFailed = errors.New("could not fetch any questions")
	// ErrStoreUnavailable reports that the question store could not be
	// reached; without it distinctness cannot be guaranteed.
	ErrStoreUnavailable = errors.New("question store unavailable")
)

// Store is durable keyed question storage (implemented by
// repository.QuestionRepository).
type Store interface {
	Exists(ctx context.Context, id int64) (bool, error)
	InsertIfAbsent(ctx context.Context, q *Question) (bool, error)
	CountAvailable(ctx context.Context) (int64, error)
}

// KnownIDs is an advisory cache of ids that are certainly persisted. A hit
// saves a store round-trip; a miss or an error falls through to the store,
// which stays the sole authority on distinctness.
type KnownIDs interface {
	Contains(ctx context.Context, id int64) (bool, error)
	Add(ctx context.Context, id int64) error
}

type sourceProvider interface {
	Fetch(ctx context.Context, count int) ([]external.RawQuestion, error)
}

const (
	defaultMaxRounds    = 5
	defaultRoundRetries = 2
	defaultRetryBackoff = 200 * time.Millisecond
	defaultStoreTimeout = 3 * time.Second
)

type ServiceOptions struct {
	// MaxRounds caps source calls per invocation.
	MaxRounds int
	// RoundRetries is the number of extra attempts after a failed source
	// call within one round.
	RoundRetries int
	RetryBackoff time.Duration
	StoreTimeout time.Duration
}

// Service assembles sets of mutually distinct questions, drawing candidates
// from the external source and persisting every new discovery.
type Service struct {
	store  Store
	source sourceProvider
	known  KnownIDs
	opts   ServiceOptions
}

func NewService(store Store, source sourceProvider, known KnownIDs, opts ServiceOptions) *Service {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = defaultMaxRounds
	}
	if opts.RoundRetries < 0 {
		opts.RoundRetries = defaultRoundRetries
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = defaultStoreTimeout
	}
	return &Service{
		store:  store,
		source: source,
		known:  known,
		opts:   opts,
	}
}

// FetchDistinct returns up to requested questions never stored before this
// invocation, in discovery order, persisting each one. Fewer than requested
// is a normal outcome once the round budget is spent. An error, either
// ErrStoreUnavailable or ErrFetchFailed, surfaces only when nothing was
// accumulated; after any progress the partial result wins.
func (s *Service) FetchDistinct(ctx context.Context, requested int) ([]Question, error) {
	if requested <= 0 {
		return []Question{}, nil
	}

	log := logging.FromContext(ctx)
	seen := make(map[int64]struct{}, requested)
	result := make([]Question, 0, requested)

	var roundErr error
	for round := 1; round <= s.opts.MaxRounds && len(result) < requested; round++ {
		if ctx.Err() != nil {
			log.Debug().Int("round", round).Msg("request canceled, no further rounds")
			break
		}

		batch, err := s.fetchRound(ctx, requested-len(result))
		if err != nil {
			roundErr = err
			break
		}

		for _, raw := range batch {
			if len(result) == requested {
				break
			}
			q, ok := fromCandidate(raw)
			if !ok {
				log.Warn().Int64("id", raw.ID).Msg("dropping invalid candidate")
				continue
			}
			if _, dup := seen[q.ID]; dup {
				continue
			}
			seen[q.ID] = struct{}{}

			fresh, err := s.discover(ctx, &q)
			if err != nil {
				roundErr = err
				break
			}
			if fresh {
				result = append(result, q)
			}
		}
		if roundErr != nil {
			break
		}
	}

	if len(result) == 0 && roundErr != nil {
		if errors.Is(roundErr, ErrStoreUnavailable) {
			return nil, roundErr
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, roundErr)
	}
	if roundErr != nil {
		log.Warn().Err(roundErr).Int("returned", len(result)).Int("requested", requested).
			Msg("returning partial result after fetch failure")
	} else if len(result) < requested {
		log.Warn().Int("returned", len(result)).Int("requested", requested).
			Msg("source ran out of new questions before the requested count")
	}
	return result, nil
}

// fetchRound asks the source for need candidates, retrying failed calls
// within the round budget. A round already under way runs to completion even
// if the caller goes away.
func (s *Service) fetchRound(ctx context.Context, need int) ([]external.RawQuestion, error) {
	log := logging.FromContext(ctx)

	var batch []external.RawQuestion
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(s.opts.RoundRetries), retry.NewConstant(s.opts.RetryBackoff))
	err := retry.Do(context.WithoutCancel(ctx), backoff, func(rctx context.Context) error {
		attempt++
		fetched, err := s.source.Fetch(rctx, need)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Int("count", need).Msg("source fetch failed")
			return retry.RetryableError(err)
		}
		batch = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// discover reports whether q was absent from the store, persisting it when
// so. Afterwards the id is settled either way: stored, and remembered in the
// known-id cache.
func (s *Service) discover(ctx context.Context, q *Question) (bool, error) {
	known, err := s.isKnown(ctx, q.ID)
	if err != nil {
		return false, err
	}
	if known {
		return false, nil
	}
	if err := s.persist(ctx, q); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) isKnown(ctx context.Context, id int64) (bool, error) {
	if s.known != nil {
		if hit, err := s.known.Contains(ctx, id); err == nil && hit {
			return true, nil
		}
	}

	storeCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	exists, err := s.store.Exists(storeCtx, id)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if exists {
		s.remember(ctx, id)
	}
	return exists, nil
}

func (s *Service) persist(ctx context.Context, q *Question) error {
	storeCtx, cancel := s.storeCtx(ctx)
	defer cancel()
	if _, err := s.store.InsertIfAbsent(storeCtx, q); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.remember(ctx, q.ID)
	return nil
}

func (s *Service) remember(ctx context.Context, id int64) {
	if s.known == nil {
		return
	}
	if err := s.known.Add(ctx, id); err != nil {
		log := logging.FromContext(ctx)
		log.Debug().Err(err).Int64("id", id).Msg("known id cache update failed")
	}
}

// storeCtx bounds a store call with its own timeout, detached from the
// caller's cancellation so writes in flight are not torn down mid-request.
func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.opts.StoreTimeout)
}
