package stats

import (
	"sort"
	"strconv"
)

// TaskCount is the number of episodes that list a task.
type TaskCount struct {
	Task  string `json:"task"`
	Count int    `json:"count"`
}

// TaskFrequency counts task occurrences across episodes and returns the top n
// by count, descending. Ties are broken by task name. n <= 0 returns all tasks.
func TaskFrequency(episodes [][]string, n int) []TaskCount {
	counts := make(map[string]int)
	for _, tasks := range episodes {
		for _, task := range tasks {
			counts[task]++
		}
	}

	out := make([]TaskCount, 0, len(counts))
	for task, c := range counts {
		out = append(out, TaskCount{Task: task, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Task < out[j].Task
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TasksPerEpisode histograms how many tasks each episode lists, e.g.
// "1 task" or "3 tasks", in ascending task-count order.
func TasksPerEpisode(taskCounts []int) []Bucket {
	counts := make(map[int]int)
	for _, n := range taskCounts {
		counts[n]++
	}

	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		label := strconv.Itoa(k) + " tasks"
		if k == 1 {
			label = "1 task"
		}
		out = append(out, Bucket{Interval: label, Count: counts[k]})
	}
	return out
}
