package models

import "sort"

// TaskGraph holds the tasks of one workflow document and the directed
// dependency edges between them. A graph is built once by the parser and
// never restructured afterwards; only the Completed flags of its tasks
// mutate during execution.
type TaskGraph struct {
	Tasks    map[string]*TaskDefinition // task id -> definition
	Metadata map[string]string          // workflow-level key/value pairs
	Edges    map[string][]string        // dependency id -> dependent task ids
	order    []string                   // insertion order, for display
}

// NewTaskGraph creates an empty task graph.
func NewTaskGraph() *TaskGraph {
	return &TaskGraph{
		Tasks:    make(map[string]*TaskDefinition),
		Metadata: make(map[string]string),
		Edges:    make(map[string][]string),
	}
}

// AddTask registers a task and inserts one edge per non-empty dependency
// token, from the dependency to the new task. A duplicate id overwrites the
// earlier definition. A dependency id that never appears as a task is still
// recorded in the edge relation; it is vacuously satisfied at scheduling
// time and ignored for in-degree counting.
func (g *TaskGraph) AddTask(task *TaskDefinition) {
	if _, exists := g.Tasks[task.ID]; !exists {
		g.order = append(g.order, task.ID)
	}
	g.Tasks[task.ID] = task

	for _, dep := range task.DependsOn {
		if dep == "" {
			continue
		}
		g.Edges[dep] = append(g.Edges[dep], task.ID)
	}
}

// Size returns the number of tasks in the graph.
func (g *TaskGraph) Size() int {
	return len(g.Tasks)
}

// TaskOrder returns task ids in document order.
func (g *TaskGraph) TaskOrder() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// NextTasks computes the ready set: every non-completed task whose
// dependencies that exist in the graph are all completed. Dependencies
// absent from the graph never block eligibility. The result is sorted
// ascending by id so scheduling order is deterministic.
func (g *TaskGraph) NextTasks() []string {
	var ready []string

	for id, task := range g.Tasks {
		if task.IsCompleted() {
			continue
		}

		eligible := true
		for _, dep := range task.DependsOn {
			if dep == "" {
				continue
			}
			if depTask, exists := g.Tasks[dep]; exists && !depTask.IsCompleted() {
				eligible = false
				break
			}
		}

		if eligible {
			ready = append(ready, id)
		}
	}

	sort.Strings(ready)
	return ready
}

// MarkCompleted marks a task as completed. Unknown ids are ignored.
func (g *TaskGraph) MarkCompleted(id string) {
	if task, exists := g.Tasks[id]; exists {
		task.Completed = true
	}
}

// AllCompleted reports whether every task in the graph is completed.
func (g *TaskGraph) AllCompleted() bool {
	for _, task := range g.Tasks {
		if !task.IsCompleted() {
			return false
		}
	}
	return true
}

// HasCycle detects if the dependency relation contains a cycle using DFS
// with color marking (white=unvisited, gray=visiting, black=visited).
// Edges to or from ids that are not tasks are skipped; a self-reference is
// a cycle.
func (g *TaskGraph) HasCycle() bool {
	return len(g.CycleMembers()) > 0
}

// CycleMembers returns the ids on a detected dependency cycle, in the order
// the cycle was walked. An acyclic graph yields nil.
func (g *TaskGraph) CycleMembers() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	// Self-references first: cheapest cycle to name.
	for id, task := range g.Tasks {
		for _, dep := range task.DependsOn {
			if dep == id {
				return []string{id}
			}
		}
	}

	colors := make(map[string]int, len(g.Tasks))
	var stack []string

	var dfs func(string) []string
	dfs = func(node string) []string {
		colors[node] = gray
		stack = append(stack, node)

		for _, neighbor := range g.Edges[node] {
			if _, exists := g.Tasks[neighbor]; !exists {
				continue
			}
			if colors[neighbor] == gray {
				// Back edge found: the cycle is the stack suffix
				// starting at the revisited node.
				for i, id := range stack {
					if id == neighbor {
						cycle := make([]string, len(stack)-i)
						copy(cycle, stack[i:])
						return cycle
					}
				}
				return []string{neighbor}
			}
			if colors[neighbor] == white {
				if cycle := dfs(neighbor); cycle != nil {
					return cycle
				}
			}
		}

		colors[node] = black
		stack = stack[:len(stack)-1]
		return nil
	}

	// Walk in sorted order so repeated calls name the same cycle.
	ids := make([]string, 0, len(g.Tasks))
	for id := range g.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if colors[id] == white {
			stack = stack[:0]
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}

	return nil
}

// ExecutionOrder computes a topological ordering of the graph using Kahn's
// algorithm. The ordering is informational: it is shown to the operator as
// the execution plan but actual dispatch follows the ready-set loop.
// Returns a *CycleError when the dependency relation is cyclic.
func (g *TaskGraph) ExecutionOrder() ([]string, error) {
	if cycle := g.CycleMembers(); cycle != nil {
		return nil, &CycleError{Members: cycle}
	}

	inDegree := make(map[string]int, len(g.Tasks))
	for id := range g.Tasks {
		inDegree[id] = 0
	}
	for _, task := range g.Tasks {
		for _, dep := range task.DependsOn {
			if dep == "" {
				continue
			}
			if _, exists := g.Tasks[dep]; exists {
				inDegree[task.ID]++
			}
		}
	}

	var order []string
	for len(inDegree) > 0 {
		var zero []string
		for id, degree := range inDegree {
			if degree == 0 {
				zero = append(zero, id)
			}
		}
		if len(zero) == 0 {
			// Unreachable after the cycle check above.
			return nil, &CycleError{Members: nil}
		}

		sort.Strings(zero)
		order = append(order, zero...)

		for _, id := range zero {
			delete(inDegree, id)
			for _, dependent := range g.Edges[id] {
				if _, exists := inDegree[dependent]; exists {
					inDegree[dependent]--
				}
			}
		}
	}

	return order, nil
}
