// SPDX-License-Identifier: MIT

package sink

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Redis stores results under a key prefix:
//
//	<prefix>:<batch>:runs                  set of run ids
//	<prefix>:<batch>:run:<id>:assignment   hash GEOID → district
//	<prefix>:<batch>:run:<id>:stats        list of "step,cut_edges,min_pop,max_pop,pop_range"
//	<prefix>:<batch>:run:<id>:districts    hash district → "population,w_mean" (weighted runs only)
//
// Every run is written in one pipeline.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to addr and pings it. An empty prefix becomes "recom".
func OpenRedis(ctx context.Context, addr, password string, db int, prefix string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("sink: redis %s: %w", addr, err)
	}

	return NewRedis(client, prefix), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "recom"
	}

	return &Redis{client: client, prefix: prefix}
}

// RunsKey returns the key of the run-id set of batch.
func (s *Redis) RunsKey(batch string) string {
	return fmt.Sprintf("%s:%s:runs", s.prefix, batch)
}

// AssignmentKey returns the assignment hash key of a run.
func (s *Redis) AssignmentKey(batch string, run int) string {
	return fmt.Sprintf("%s:%s:run:%d:assignment", s.prefix, batch, run)
}

// StatsKey returns the statistics list key of a run.
func (s *Redis) StatsKey(batch string, run int) string {
	return fmt.Sprintf("%s:%s:run:%d:stats", s.prefix, batch, run)
}

// DistrictsKey returns the per-district hash key of a run.
func (s *Redis) DistrictsKey(batch string, run int) string {
	return fmt.Sprintf("%s:%s:run:%d:districts", s.prefix, batch, run)
}

// Write implements Sink.
func (s *Redis) Write(ctx context.Context, r Result) error {
	rows, err := r.Rows()
	if err != nil {
		return err
	}
	assignment := make(map[string]any, len(rows))
	for _, row := range rows {
		assignment[row[0]] = row[1]
	}
	districtRows, err := r.Districts()
	if err != nil {
		return err
	}
	districts := make(map[string]any, len(districtRows))
	for _, d := range districtRows {
		districts[d[0]] = d[1] + "," + d[2]
	}
	lines := make([]any, len(r.Steps))
	for i, st := range r.Steps {
		lines[i] = fmt.Sprintf("%d,%d,%d,%d,%d", st.Step, st.CutEdges, st.MinPop, st.MaxPop, st.PopRange)
	}

	aKey, sKey := s.AssignmentKey(r.BatchID, r.RunID), s.StatsKey(r.BatchID, r.RunID)
	dKey := s.DistrictsKey(r.BatchID, r.RunID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, aKey, sKey, dKey)
		pipe.HSet(ctx, aKey, assignment)
		if len(districts) > 0 {
			pipe.HSet(ctx, dKey, districts)
		}
		if len(lines) > 0 {
			pipe.RPush(ctx, sKey, lines...)
		}
		pipe.SAdd(ctx, s.RunsKey(r.BatchID), strconv.Itoa(r.RunID))

		return nil
	})
	if err != nil {
		return fmt.Errorf("sink: redis run %d: %w", r.RunID, err)
	}

	return nil
}

// Close closes the underlying client.
func (s *Redis) Close() error { return s.client.Close() }
