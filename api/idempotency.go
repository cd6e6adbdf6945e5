// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/blinklabs-io/gavel/database"
	"github.com/blinklabs-io/gavel/database/models"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyReplayed  = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 128
	maxRequestBodyBytes  = 1 << 20
)

// idempotencyStore keeps recorded responses in an LRU cache in front of
// the blob store
type idempotencyStore struct {
	db     *database.Database
	cache  *lru.Cache
	flight singleflight.Group
}

func newIdempotencyStore(
	db *database.Database,
	size int,
) (*idempotencyStore, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create idempotency cache: %w", err)
	}
	return &idempotencyStore{
		db:    db,
		cache: cache,
	}, nil
}

func cacheKey(actor, key string) string {
	return actor + "\x00" + key
}

func (s *idempotencyStore) get(
	actor string,
	key string,
) (*models.IdempotencyRecord, error) {
	if val, ok := s.cache.Get(cacheKey(actor, key)); ok {
		if rec, ok := val.(*models.IdempotencyRecord); ok {
			return rec, nil
		}
	}
	if s.db == nil {
		return nil, nil
	}
	rec, err := s.db.GetIdempotencyRecord(actor, key, nil)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		s.cache.Add(cacheKey(actor, key), rec)
	}
	return rec, nil
}

func (s *idempotencyStore) put(rec *models.IdempotencyRecord) error {
	if s.db != nil {
		if err := s.db.SetIdempotencyRecord(rec, nil); err != nil {
			return err
		}
	}
	s.cache.Add(cacheKey(rec.Actor, rec.Key), rec)
	return nil
}

func requestHash(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method))
	h.Write([]byte{0})
	h.Write([]byte(r.URL.Path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// recorder buffers a handler response so it can be stored before it is
// written to the client
type recorder struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newRecorder() *recorder {
	return &recorder{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) Write(p []byte) (int, error) {
	return r.body.Write(p)
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
}

// withIdempotency replays the recorded response for a repeated
// (actor, Idempotency-Key) pair. Requests without the header pass through.
// Reusing a key for a different request is rejected. Server errors are not
// recorded so the client can retry them.
func (a *API) withIdempotency(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(idempotencyKeyHeader)
		if key == "" {
			next(w, r)
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			writeError(w, http.StatusBadRequest, "invalid_argument",
				"Idempotency-Key exceeds 128 bytes")
			return
		}
		actor := actorFrom(r)
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_argument",
				"failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		hash := requestHash(r, body)

		val, err, _ := a.idempotency.flight.Do(
			cacheKey(actor, key),
			func() (any, error) {
				rec, err := a.idempotency.get(actor, key)
				if err != nil {
					return nil, err
				}
				if rec != nil {
					return rec, nil
				}
				buf := newRecorder()
				next(buf, r)
				rec = &models.IdempotencyRecord{
					CreatedAt:   time.Now().UTC(),
					Actor:       actor,
					Key:         key,
					RequestHash: hash,
					Body:        buf.body.Bytes(),
					StatusCode:  buf.status,
				}
				if buf.status < http.StatusInternalServerError {
					if err := a.idempotency.put(rec); err != nil {
						a.logger.Error(
							"failed to store idempotency record",
							"error", err,
							"actor", actor,
						)
					}
				}
				// The first caller gets a fresh response, not a replay
				return &flightResult{record: rec, fresh: r}, nil
			},
		)
		if err != nil {
			a.logger.Error(
				"idempotency lookup failed",
				"error", err,
				"actor", actor,
			)
			writeError(w, http.StatusInternalServerError, "internal",
				"idempotency lookup failed")
			return
		}
		var rec *models.IdempotencyRecord
		replayed := true
		switch v := val.(type) {
		case *models.IdempotencyRecord:
			rec = v
		case *flightResult:
			rec = v.record
			replayed = v.fresh != r
		}
		if rec.RequestHash != hash {
			writeError(w, http.StatusUnprocessableEntity, "idempotency_key_reused",
				"Idempotency-Key was used for a different request")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if replayed {
			w.Header().Set(idempotencyReplayed, "true")
			a.metrics.idempotentReplays.Inc()
		}
		w.WriteHeader(rec.StatusCode)
		_, _ = w.Write(rec.Body)
	}
}

type flightResult struct {
	record *models.IdempotencyRecord
	fresh  *http.Request
}
