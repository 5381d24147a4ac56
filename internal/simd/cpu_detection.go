package simd

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// CPUFeatures contains detected CPU capabilities
type CPUFeatures struct {
	Vendor        string
	BrandName     string
	LogicalCores  int
	PhysicalCores int
	HasAVX2       bool
	HasAVX512     bool
	HasFMA3       bool
	HasNEON       bool
}

var (
	features       CPUFeatures
	implementation string
)

func init() {
	detectCPU()
}

// detectCPU detects CPU capabilities and names the vector path vek will take
func detectCPU() {
	hasAVX512 := cpuid.CPU.Supports(cpuid.AVX512F) &&
		cpuid.CPU.Supports(cpuid.AVX512DQ)

	features = CPUFeatures{
		Vendor:        cpuid.CPU.VendorString,
		BrandName:     cpuid.CPU.BrandName,
		LogicalCores:  cpuid.CPU.LogicalCores,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		HasAVX2:       cpuid.CPU.Supports(cpuid.AVX2),
		HasAVX512:     hasAVX512,
		HasFMA3:       cpuid.CPU.Supports(cpuid.FMA3),
		HasNEON:       cpuid.CPU.Supports(cpuid.ASIMD), // ARM NEON
	}

	switch {
	case features.HasAVX2 && features.HasFMA3:
		implementation = "avx2"
	case features.HasNEON:
		implementation = "neon"
	default:
		implementation = "generic"
	}
}

// GetCPUFeatures returns the detected CPU capabilities
func GetCPUFeatures() CPUFeatures {
	return features
}

// GetImplementation returns the selected vector implementation name
func GetImplementation() string {
	return implementation
}

// LogicalCPUs returns the number of logical CPUs usable by this process.
// cpuid reports the package topology; the scheduler limit can be lower
// (cgroups, taskset, GOMAXPROCS), so the smaller of the two wins.
func LogicalCPUs() int {
	n := runtime.GOMAXPROCS(0)
	if features.LogicalCores > 0 && features.LogicalCores < n {
		n = features.LogicalCores
	}
	if n < 1 {
		n = 1
	}
	return n
}
