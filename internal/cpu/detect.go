// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package cpu

import "github.com/klauspost/cpuid/v2"

// cpuArchLevel returns the x86-64 microarchitecture level reported by cpuid,
// or 0 on other architectures.
func cpuArchLevel() int {
	return cpuid.CPU.X64Level()
}
