package tuner

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
)

// Default learning hyperparameters.
const (
	defaultAlpha        = 0.1
	defaultGamma        = 0.9
	defaultDelta        = 0.9
	defaultEpsilon      = 1.0
	defaultEpsilonMin   = 0.05
	defaultEpsilonDecay = 0.995
)

var defaultActions = []string{"increase_difficulty", "decrease_difficulty", "give_hint", "show_motivation"}

// State is the discretized learner snapshot the Q-table is keyed by.
type State struct {
	Performance float64 `json:"performance"`
	TimeTaken   float64 `json:"time_taken"`
	Engagement  float64 `json:"engagement"`
	Difficulty  float64 `json:"difficulty"`
	Proficiency float64 `json:"proficiency"`
}

// Agent is a tabular Q-learning tuner choosing gamification actions with an
// epsilon-greedy policy. The table is the one process-wide mutable structure
// in the service, so all access goes through the mutex, and it is persisted
// to disk after every update.
type Agent struct {
	mu           sync.Mutex
	actions      []string
	qTable       map[State]map[string]float64
	alpha        float64
	gamma        float64
	delta        float64
	epsilon      float64
	epsilonMin   float64
	epsilonDecay float64
	tablePath    string
}

func NewAgent(tablePath string) *Agent {
	agent := &Agent{
		actions:      defaultActions,
		qTable:       make(map[State]map[string]float64),
		alpha:        defaultAlpha,
		gamma:        defaultGamma,
		delta:        defaultDelta,
		epsilon:      defaultEpsilon,
		epsilonMin:   defaultEpsilonMin,
		epsilonDecay: defaultEpsilonDecay,
		tablePath:    tablePath,
	}

	if err := agent.loadTable(); err != nil {
		log.Printf("[INFO] Starting tuner with a fresh Q-table: %v", err)
	}

	return agent
}

// Step chooses an action for the current learner state, applies the
// engagement dynamics to the logs, updates the Q-table, and persists it.
func (a *Agent) Step(logs, userActionMetrics map[string]float64) (string, map[string]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	state := stateFromLogs(logs)
	action := a.chooseAction(state)

	gain := metricOr(userActionMetrics, "gain", 1.0)
	cost := metricOr(userActionMetrics, "cost", 0.1)
	disengagement := metricOr(userActionMetrics, "disengagement", 0.05)

	reward := rewardOptimization(gain, cost, 1.0, 1.0)
	logs["engagement"] = engagementDynamics(logs["engagement"], reward, disengagement, 1.0, 1.0)

	nextState := stateFromLogs(logs)
	a.updateQTable(state, action, reward, nextState)

	if err := a.saveTable(); err != nil {
		log.Printf("[ERROR] Failed to persist tuner Q-table: %v", err)
	}

	return action, logs
}

// chooseAction is epsilon-greedy with decaying epsilon.
func (a *Agent) chooseAction(state State) string {
	defer func() {
		a.epsilon = max(a.epsilonMin, a.epsilon*a.epsilonDecay)
	}()

	values, known := a.qTable[state]
	if !known || rand.Float64() < a.epsilon {
		return a.actions[rand.Intn(len(a.actions))]
	}

	best := a.actions[0]
	for _, action := range a.actions[1:] {
		if values[action] > values[best] {
			best = action
		}
	}
	return best
}

// updateQTable applies Q(s,a) ← (1−α)Q(s,a) + α(r + δ·max Q(s',·)).
func (a *Agent) updateQTable(state State, action string, reward float64, nextState State) {
	current := a.actionValues(state)
	next := a.actionValues(nextState)

	nextMax := 0.0
	for _, value := range next {
		if value > nextMax {
			nextMax = value
		}
	}

	current[action] = (1-a.alpha)*current[action] + a.alpha*(reward+a.delta*nextMax)
}

func (a *Agent) actionValues(state State) map[string]float64 {
	values, ok := a.qTable[state]
	if !ok {
		values = make(map[string]float64, len(a.actions))
		for _, action := range a.actions {
			values[action] = 0.0
		}
		a.qTable[state] = values
	}
	return values
}

// engagementDynamics integrates dE/dt = αR(t) − βD(t) one step.
func engagementDynamics(engagement, reward, disengagement, alpha, beta float64) float64 {
	return engagement + alpha*reward - beta*disengagement
}

// rewardOptimization computes R(a) = w1·G(a) − w2·C(a).
func rewardOptimization(gain, cost, w1, w2 float64) float64 {
	return w1*gain - w2*cost
}

func stateFromLogs(logs map[string]float64) State {
	difficulty := logs["difficulty"]
	if difficulty == 0 {
		difficulty = 1
	}
	return State{
		Performance: logs["performance"],
		TimeTaken:   logs["time_taken"],
		Engagement:  logs["engagement"],
		Difficulty:  difficulty,
		Proficiency: logs["proficiency"],
	}
}

func metricOr(metrics map[string]float64, key string, fallback float64) float64 {
	if value, ok := metrics[key]; ok {
		return value
	}
	return fallback
}

type tableEntry struct {
	State  State              `json:"state"`
	Values map[string]float64 `json:"values"`
}

func (a *Agent) saveTable() error {
	entries := make([]tableEntry, 0, len(a.qTable))
	for state, values := range a.qTable {
		entries = append(entries, tableEntry{State: state, Values: values})
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal Q-table: %w", err)
	}

	if err := os.WriteFile(a.tablePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write Q-table: %w", err)
	}

	return nil
}

func (a *Agent) loadTable() error {
	data, err := os.ReadFile(a.tablePath)
	if err != nil {
		return fmt.Errorf("failed to read Q-table: %w", err)
	}

	var entries []tableEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to unmarshal Q-table: %w", err)
	}

	for _, entry := range entries {
		a.qTable[entry.State] = entry.Values
	}

	return nil
}
