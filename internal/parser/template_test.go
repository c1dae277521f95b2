package parser

import (
	"reflect"
	"strings"
	"testing"
)

func TestGenerateTemplate_RoundTrip(t *testing.T) {
	graph, err := NewWorkflowParser().Parse(strings.NewReader(GenerateTemplate(3)))
	if err != nil {
		t.Fatalf("template does not parse: %v", err)
	}

	// 3 sequential tasks plus the aggregating final task.
	if graph.Size() != 4 {
		t.Fatalf("expected 4 tasks, got %d", graph.Size())
	}

	final, exists := graph.Tasks["final"]
	if !exists {
		t.Fatal("expected a final task")
	}
	if !reflect.DeepEqual(final.DependsOn, []string{"task1", "task2", "task3"}) {
		t.Errorf("final task dependencies: %v", final.DependsOn)
	}

	if graph.HasCycle() {
		t.Error("template graph must be acyclic")
	}

	order, err := graph.ExecutionOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order[len(order)-1] != "final" {
		t.Errorf("final task should run last: %v", order)
	}
}

func TestGenerateTemplate_SmallCounts(t *testing.T) {
	for _, n := range []int{1, 2} {
		graph, err := NewWorkflowParser().Parse(strings.NewReader(GenerateTemplate(n)))
		if err != nil {
			t.Fatalf("template(%d) does not parse: %v", n, err)
		}
		// No final task below 3 tasks.
		if graph.Size() != n {
			t.Errorf("template(%d): expected %d tasks, got %d", n, n, graph.Size())
		}
		if _, exists := graph.Tasks["final"]; exists {
			t.Errorf("template(%d): unexpected final task", n)
		}
	}
}

func TestGenerateTemplate_SequentialDependencies(t *testing.T) {
	graph, err := NewWorkflowParser().Parse(strings.NewReader(GenerateTemplate(2)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps := graph.Tasks["task1"].DependsOn; len(deps) != 0 {
		t.Errorf("task1 should have no dependencies, got %v", deps)
	}
	if deps := graph.Tasks["task2"].DependsOn; !reflect.DeepEqual(deps, []string{"task1"}) {
		t.Errorf("task2 should depend on task1, got %v", deps)
	}

	for id, task := range graph.Tasks {
		if len(task.Commands) == 0 {
			t.Errorf("task %s has no commands", id)
		}
	}
}

func TestGenerateTemplate_HasMetadata(t *testing.T) {
	graph, err := NewWorkflowParser().Parse(strings.NewReader(GenerateTemplate(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if graph.Metadata["author"] == "" {
		t.Error("template should carry an author metadata entry")
	}
	if graph.Metadata["date"] == "" {
		t.Error("template should carry a date metadata entry")
	}
}
