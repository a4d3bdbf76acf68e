package main

import "github.com/saitomics/proteomics/internal/debug"

func debugOn() {
	debug.SetEnabled(true)
}
