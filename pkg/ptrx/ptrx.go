package ptrx

import "time"

// Pointer helpers for optional fields

func String(s string) *string { return &s }

func Bool(b bool) *bool { return &b }

func Int(i int) *int { return &i }

func Float64(f float64) *float64 { return &f }

func Time(t time.Time) *time.Time { return &t }
