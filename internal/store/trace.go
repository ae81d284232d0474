package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/Higerald/OptionPricing/internal/model"
)

// LatestRef names the most recently saved trace.
const LatestRef = "traces/latest"

// TraceManifest ties a run record to its two compressed series.
type TraceManifest struct {
	Record        model.Record `json:"record"`
	Every         int          `json:"every"`
	PriceChunk    string       `json:"price_chunk"`
	StdErrorChunk string       `json:"standard_error_chunk"`
}

// SaveTrace stores the checkpoints as two XOR chunks plus a JSON manifest and
// moves LatestRef to the manifest. It returns the manifest hash.
func (s *Store) SaveTrace(rec model.Record, every int, cps []model.Checkpoint) (string, error) {
	prices := make([]Point, len(cps))
	errs := make([]Point, len(cps))
	for i, cp := range cps {
		prices[i] = Point{T: int64(cp.Paths), V: cp.Price}
		errs[i] = Point{T: int64(cp.Paths), V: cp.StandardError}
	}

	m := TraceManifest{Record: rec, Every: every}
	var err error
	if m.PriceChunk, err = s.putSeries(prices); err != nil {
		return "", fmt.Errorf("store price series: %w", err)
	}
	if m.StdErrorChunk, err = s.putSeries(errs); err != nil {
		return "", fmt.Errorf("store standard error series: %w", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	hash, err := s.Put(data)
	if err != nil {
		return "", err
	}
	if err := s.SetRef(LatestRef, hash); err != nil {
		return "", err
	}
	return hash, nil
}

// LoadTrace reads a manifest (by hash, prefix, or "latest") and rebuilds the
// checkpoints.
func (s *Store) LoadTrace(ref string) (TraceManifest, []model.Checkpoint, error) {
	hash := ref
	if ref == "" || ref == "latest" {
		var err error
		if hash, err = s.Ref(LatestRef); err != nil {
			return TraceManifest{}, nil, err
		}
	}

	data, err := s.Get(hash)
	if err != nil {
		return TraceManifest{}, nil, err
	}
	var m TraceManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return TraceManifest{}, nil, fmt.Errorf("decode manifest %s: %w", hash, err)
	}

	prices, err := s.getSeries(m.PriceChunk)
	if err != nil {
		return m, nil, err
	}
	errs, err := s.getSeries(m.StdErrorChunk)
	if err != nil {
		return m, nil, err
	}
	if len(prices) != len(errs) {
		return m, nil, fmt.Errorf("trace %s: %d price samples but %d standard error samples", hash, len(prices), len(errs))
	}

	cps := make([]model.Checkpoint, len(prices))
	for i := range prices {
		cps[i] = model.Checkpoint{Paths: int(prices[i].T), Price: prices[i].V, StandardError: errs[i].V}
	}
	return m, cps, nil
}

func (s *Store) putSeries(points []Point) (string, error) {
	data, err := EncodeSeries(points)
	if err != nil {
		return "", err
	}
	return s.Put(data)
}

func (s *Store) getSeries(hash string) ([]Point, error) {
	data, err := s.Get(hash)
	if err != nil {
		return nil, err
	}
	return DecodeSeries(data)
}

// TraceInfo is one entry of ListTraces.
type TraceInfo struct {
	Hash     string
	Manifest TraceManifest
}

// ListTraces returns every stored trace manifest, oldest run first. Series
// chunks are not JSON and are skipped.
func (s *Store) ListTraces() ([]TraceInfo, error) {
	hashes, err := s.List()
	if err != nil {
		return nil, err
	}

	var traces []TraceInfo
	for _, h := range hashes {
		data, err := s.Get(h)
		if err != nil {
			return nil, err
		}
		var m TraceManifest
		if json.Unmarshal(data, &m) != nil || m.PriceChunk == "" {
			continue
		}
		traces = append(traces, TraceInfo{Hash: h, Manifest: m})
	}
	sort.Slice(traces, func(i, j int) bool {
		return traces[i].Manifest.Record.Timestamp.Before(traces[j].Manifest.Record.Timestamp)
	})
	return traces, nil
}

// DeleteTrace removes a manifest and the series no other manifest uses. If
// it was the latest trace, LatestRef is removed too. It returns the full hash
// of the deleted manifest.
func (s *Store) DeleteTrace(ref string) (string, error) {
	path, err := s.ResolvePath(ref)
	if err != nil {
		return "", err
	}
	hash := filepath.Base(filepath.Dir(path)) + filepath.Base(path)

	traces, err := s.ListTraces()
	if err != nil {
		return "", err
	}
	var target *TraceManifest
	shared := map[string]bool{}
	for i := range traces {
		if traces[i].Hash == hash {
			target = &traces[i].Manifest
			continue
		}
		shared[traces[i].Manifest.PriceChunk] = true
		shared[traces[i].Manifest.StdErrorChunk] = true
	}
	if target == nil {
		return "", fmt.Errorf("object %s is not a trace manifest", ref)
	}

	if err := s.Delete(hash); err != nil {
		return "", err
	}
	for _, chunk := range []string{target.PriceChunk, target.StdErrorChunk} {
		if shared[chunk] {
			continue
		}
		shared[chunk] = true
		if err := s.Delete(chunk); err != nil {
			return "", fmt.Errorf("delete series %s: %w", chunk, err)
		}
	}

	if latest, err := s.Ref(LatestRef); err == nil && latest == hash {
		if err := s.DeleteRef(LatestRef); err != nil {
			return "", err
		}
	}
	return hash, nil
}
