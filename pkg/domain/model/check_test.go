package model_test

import (
	"testing"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

func TestCheckSnapshot_Verdict(t *testing.T) {
	completed := func(name, conclusion string) model.CheckRun {
		return model.CheckRun{Name: name, Status: "completed", Conclusion: conclusion}
	}
	running := func(name string) model.CheckRun {
		return model.CheckRun{Name: name, Status: "in_progress"}
	}

	tests := []struct {
		name     string
		runs     []model.CheckRun
		required []string
		expected model.CheckVerdict
	}{
		{
			name: "all success",
			runs: []model.CheckRun{
				completed("test (3.11)", "success"),
				completed("test (3.12)", "success"),
				completed("lint", "success"),
			},
			required: []string{"test (3.11)", "test (3.12)", "lint"},
			expected: model.VerdictSuccess,
		},
		{
			name: "one failure overrides pending",
			runs: []model.CheckRun{
				completed("lint", "failure"),
				running("test (3.11)"),
			},
			required: []string{"lint"},
			expected: model.VerdictFailure,
		},
		{
			name: "cancelled counts as failure",
			runs: []model.CheckRun{
				completed("test (3.11)", "cancelled"),
				completed("lint", "success"),
			},
			expected: model.VerdictFailure,
		},
		{
			name: "still running",
			runs: []model.CheckRun{
				completed("lint", "success"),
				running("test (3.11)"),
			},
			expected: model.VerdictPending,
		},
		{
			name:     "no checks reported yet",
			runs:     nil,
			required: []string{"lint"},
			expected: model.VerdictPending,
		},
		{
			name: "required check missing",
			runs: []model.CheckRun{
				completed("lint", "success"),
			},
			required: []string{"lint", "test (3.11)"},
			expected: model.VerdictPending,
		},
		{
			name: "required match is case-insensitive",
			runs: []model.CheckRun{
				completed("Lint", "success"),
			},
			required: []string{"lint"},
			expected: model.VerdictSuccess,
		},
		{
			name: "skipped and neutral count as success",
			runs: []model.CheckRun{
				completed("lint", "success"),
				completed("docs", "skipped"),
				completed("coverage", "neutral"),
			},
			expected: model.VerdictSuccess,
		},
		{
			name: "action_required holds pending",
			runs: []model.CheckRun{
				completed("lint", "success"),
				completed("deploy", "action_required"),
			},
			expected: model.VerdictPending,
		},
		{
			name: "no required list accepts any passing set",
			runs: []model.CheckRun{
				completed("anything", "success"),
			},
			expected: model.VerdictSuccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.Classify(tt.runs, tt.required)
			if got != tt.expected {
				t.Errorf("Classify() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCheckSnapshot_VerdictIdempotent(t *testing.T) {
	runs := []model.CheckRun{
		{Name: "lint", Status: "completed", Conclusion: "failure"},
		{Name: "test (3.11)", Status: "in_progress"},
	}

	snap := model.NewCheckSnapshot(runs, []string{"lint"})
	first := snap.Verdict()
	second := snap.Verdict()
	if first != second {
		t.Errorf("Verdict() not stable: first %v, second %v", first, second)
	}
}

func TestCheckSnapshot_Summary(t *testing.T) {
	tests := []struct {
		name     string
		runs     []model.CheckRun
		required []string
		expected string
	}{
		{
			name: "all done",
			runs: []model.CheckRun{
				{Name: "lint", Status: "completed", Conclusion: "success"},
				{Name: "test", Status: "completed", Conclusion: "success"},
			},
			expected: "2/2 completed",
		},
		{
			name: "failure named",
			runs: []model.CheckRun{
				{Name: "lint", Status: "completed", Conclusion: "failure"},
				{Name: "test", Status: "in_progress"},
			},
			expected: "1/2 completed, 1 failed (lint), 1 pending",
		},
		{
			name:     "missing required noted",
			runs:     []model.CheckRun{{Name: "lint", Status: "completed", Conclusion: "success"}},
			required: []string{"lint", "test"},
			expected: "1/1 completed, required checks missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := model.NewCheckSnapshot(tt.runs, tt.required)
			if got := snap.Summary(); got != tt.expected {
				t.Errorf("Summary() = %q, want %q", got, tt.expected)
			}
		})
	}
}
