package scheduler

import (
	"github.com/viant/vkernel/runtime/process"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Fairness summarises how evenly CPU time is spread across processes
type Fairness struct {
	Processes int     `json:"processes"`
	MeanCPU   float64 `json:"meanCpuMs"`
	StdDevCPU float64 `json:"stdDevCpuMs"`
	MinCPU    float64 `json:"minCpuMs"`
	MaxCPU    float64 `json:"maxCpuMs"`
}

// FairnessOf computes the CPU time distribution of the supplied processes
func FairnessOf(procs []*process.Process) Fairness {
	if len(procs) == 0 {
		return Fairness{}
	}
	samples := make([]float64, len(procs))
	for i, p := range procs {
		samples[i] = float64(p.CPUTime())
	}
	ret := Fairness{
		Processes: len(samples),
		MinCPU:    floats.Min(samples),
		MaxCPU:    floats.Max(samples),
	}
	if len(samples) == 1 {
		ret.MeanCPU = samples[0]
		return ret
	}
	ret.MeanCPU, ret.StdDevCPU = stat.MeanStdDev(samples, nil)
	return ret
}
