package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/yurifrl/finsight/pkg/analytics"
	"github.com/yurifrl/finsight/pkg/ledger"
)

// session is one uploaded ledger and the cushion its notifications carry.
// mu serializes loads against queries.
type session struct {
	mu        sync.Mutex
	store     *ledger.Store
	analytics *analytics.Session
}

type sessions struct {
	cache *cache.Cache
	opts  analytics.Options
}

func newSessions(ttl time.Duration, opts analytics.Options) *sessions {
	return &sessions{
		cache: cache.New(ttl, 2*ttl),
		opts:  opts,
	}
}

func (s *sessions) create() (string, *session) {
	id := uuid.NewString()
	sess := &session{
		store:     ledger.NewStore(),
		analytics: analytics.NewSession(s.opts),
	}
	s.cache.Set(id, sess, cache.DefaultExpiration)
	return id, sess
}

// get returns the session and extends its expiry.
func (s *sessions) get(id string) (*session, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	sess := v.(*session)
	s.cache.Set(id, sess, cache.DefaultExpiration)
	return sess, true
}

func (s *sessions) count() int {
	return s.cache.ItemCount()
}
