package mapping

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/milequest/mapservice/pkg/maperr"
)

// OptimizeWaypoints reorders waypoints to minimize travel using the default
// profile. Lists shorter than three, or with fewer than two unlocked
// waypoints, are returned unchanged. A locked first or last waypoint keeps
// its position; locks on interior waypoints are not honored.
//
// The returned slice is new and its Order fields are renumbered from 1. The
// input slice is never modified.
func (s *Service) OptimizeWaypoints(ctx context.Context, waypoints []Waypoint) ([]Waypoint, error) {
	ctx, span := s.tracer.Start(ctx, "mapping.OptimizeWaypoints",
		trace.WithAttributes(attribute.Int("waypoints.count", len(waypoints))))
	defer span.End()

	if len(waypoints) < 3 {
		return waypoints, nil
	}

	unlocked := 0
	for _, w := range waypoints {
		if !w.IsLocked {
			unlocked++
		}
	}
	if unlocked < 2 {
		return waypoints, nil
	}

	if err := validatePositions(waypoints); err != nil {
		return nil, s.fail(span, "optimize waypoints", err)
	}

	pinFirst := waypoints[0].IsLocked
	pinLast := waypoints[len(waypoints)-1].IsLocked

	req := OptimizationRequest{
		Coordinates: positionsOf(waypoints),
		Profile:     s.defaultProfile,
		Source:      EndpointAny,
		Destination: EndpointAny,
	}
	if pinFirst {
		req.Source = EndpointFirst
	}
	if pinLast {
		req.Destination = EndpointLast
	}

	opt, err := s.provider.GetOptimization(ctx, req)
	if err != nil {
		return nil, s.fail(span, "optimize waypoints", err)
	}
	if opt == nil || len(opt.Order) == 0 {
		return nil, s.fail(span, "optimize waypoints", maperr.New(maperr.CodeNoRouteFound, maperr.ErrNoRouteFound.Message))
	}

	order, err := normalizeOrder(opt.Order, len(waypoints), pinFirst, pinLast)
	if err != nil {
		return nil, s.fail(span, "optimize waypoints", err)
	}

	optimized := make([]Waypoint, len(order))
	for i, idx := range order {
		w := waypoints[idx]
		w.Order = i + 1
		optimized[i] = w
	}

	s.logger.Debug().
		Int("waypoint_count", len(optimized)).
		Bool("pin_first", pinFirst).
		Bool("pin_last", pinLast).
		Msg("waypoints optimized")

	return optimized, nil
}

// normalizeOrder checks that order is a permutation of [0, n) and moves
// pinned endpoints back to the ends.
func normalizeOrder(order []int, n int, pinFirst, pinLast bool) ([]int, error) {
	if len(order) != n {
		return nil, maperr.New(maperr.CodeUnknown,
			fmt.Sprintf("provider returned an order of length %d for %d waypoints", len(order), n))
	}

	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return nil, maperr.New(maperr.CodeUnknown,
				fmt.Sprintf("provider returned an invalid waypoint order %v", order))
		}
		seen[idx] = true
	}

	out := make([]int, 0, n)
	if pinFirst {
		out = append(out, 0)
	}
	for _, idx := range order {
		if (pinFirst && idx == 0) || (pinLast && idx == n-1) {
			continue
		}
		out = append(out, idx)
	}
	if pinLast {
		out = append(out, n-1)
	}
	return out, nil
}
