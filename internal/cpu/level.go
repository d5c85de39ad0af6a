// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

// Package cpu provides CPU architecture detection functionality
// for the fastinflate decoder. It determines the architecture
// level to enable the word-refill decode loop.
package cpu

// ArchLevel represents the detected CPU architecture level.
// - 0: unknown or not x86-64, only the byte-wise decoder runs
// - 1-4: x86-64 microarchitecture level (v1..v4)
// The value is determined at package initialization time.
var (
	ArchLevel = cpuArchLevel()
)
