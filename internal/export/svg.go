package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/rgflow/internal/flow"
)

// TrajectoryToSVG renders a trajectory projected onto the (xAxis,
// yAxis) coupling plane as a polyline.
func TrajectoryToSVG(traj *flow.Trajectory, xAxis, yAxis, width, height int, strokeColor string) string {
	if traj == nil || len(traj.Samples) < 2 {
		return ""
	}
	return FlowDiagramSVG([]*flow.Trajectory{traj}, nil, xAxis, yAxis, width, height, strokeColor)
}

// FlowDiagramSVG renders several trajectories on one coupling plane,
// with fixed points drawn as circles. Trajectories with fewer than two
// samples are skipped.
func FlowDiagramSVG(trajs []*flow.Trajectory, points []flow.FixedPoint, xAxis, yAxis, width, height int, strokeColor string) string {
	minX, maxX, minY, maxY, ok := bounds(trajs, points, xAxis, yAxis)
	if !ok {
		return ""
	}

	// Padding so lines do not hug the frame.
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	toPx := func(x, y float64) (float64, float64) {
		px := (x - minX) / rangeX * float64(width)
		py := float64(height) - (y-minY)/rangeY*float64(height)
		return px, py
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, traj := range trajs {
		if traj == nil || len(traj.Samples) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
		for i, s := range traj.Samples {
			px, py := toPx(s.Point[xAxis], s.Point[yAxis])
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.2f %.2f", px, py))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.2f %.2f", px, py))
			}
		}
		sb.WriteString("\"/>\n")
	}

	for _, fp := range points {
		px, py := toPx(fp.Point[xAxis], fp.Point[yAxis])
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="4" fill="#ff5f5f"/>
`, px, py))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func bounds(trajs []*flow.Trajectory, points []flow.FixedPoint, xAxis, yAxis int) (minX, maxX, minY, maxY float64, ok bool) {
	first := true
	visit := func(x, y float64) {
		if first {
			minX, maxX, minY, maxY = x, x, y, y
			first = false
			return
		}
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}

	for _, traj := range trajs {
		if traj == nil {
			continue
		}
		for _, s := range traj.Samples {
			visit(s.Point[xAxis], s.Point[yAxis])
		}
	}
	for _, fp := range points {
		visit(fp.Point[xAxis], fp.Point[yAxis])
	}

	return minX, maxX, minY, maxY, !first
}
