package crew

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"DocRAG/backend/go/internal/models"
	"DocRAG/backend/go/pkg/logger"

	"github.com/sirupsen/logrus"
)

// scriptedLLM answers by role, taken from the "You are <role>." system line.
type scriptedLLM struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	prompts map[string][]string
	calls   []string
}

func newScriptedLLM() *scriptedLLM {
	return &scriptedLLM{
		replies: map[string]string{},
		errs:    map[string]error{},
		prompts: map[string][]string{},
	}
}

func (s *scriptedLLM) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := strings.SplitN(req.SystemInstruction, "\n", 2)[0]
	role := strings.TrimSuffix(strings.TrimPrefix(line, "You are "), ".")
	s.calls = append(s.calls, role)
	s.prompts[role] = append(s.prompts[role], req.Content[0].Text())
	if err := s.errs[role]; err != nil {
		return nil, err
	}
	return &models.GenerateContentResponse{
		Content: []models.Content{models.NewTextContent(models.SpeakerModel, s.replies[role])},
	}, nil
}

type stubTool struct {
	name    string
	result  string
	err     error
	queries []string
}

func (t *stubTool) Name() string { return t.name }

func (t *stubTool) Search(ctx context.Context, query string) (string, error) {
	t.queries = append(t.queries, query)
	return t.result, t.err
}

type sliceMemory struct {
	turns []Turn
}

func (m *sliceMemory) Recent(ctx context.Context) ([]Turn, error) { return m.turns, nil }

func (m *sliceMemory) Append(ctx context.Context, turn Turn) error {
	m.turns = append(m.turns, turn)
	return nil
}

func mustAgent(t *testing.T, role string, model *scriptedLLM, delegate bool) *Agent {
	t.Helper()
	a, err := NewAgent(AgentConfig{
		Role:            role,
		Goal:            "Help with {query}",
		Backstory:       "Backstory about {query}.",
		AllowDelegation: delegate,
		LLM:             model,
	})
	if err != nil {
		t.Fatalf("NewAgent(%s) error = %v", role, err)
	}
	return a
}

func mustTask(t *testing.T, cfg TaskConfig) *Task {
	t.Helper()
	task, err := NewTask(cfg)
	if err != nil {
		t.Fatalf("NewTask(%s) error = %v", cfg.Name, err)
	}
	return task
}

type fixture struct {
	model            *scriptedLLM
	reader, searcher *Agent
	writer           *Agent
	docTool, webTool *stubTool
	doc, web, blog   *Task
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{model: newScriptedLLM()}
	f.reader = mustAgent(t, "Reader", f.model, true)
	f.searcher = mustAgent(t, "Searcher", f.model, true)
	f.writer = mustAgent(t, "Writer", f.model, true)
	f.model.replies["Reader"] = "doc findings"
	f.model.replies["Searcher"] = "web findings"
	f.model.replies["Writer"] = "final post"

	f.docTool = &stubTool{name: "document_search", result: "passage one"}
	f.webTool = &stubTool{name: "web_search", result: "snippet one"}
	f.doc = mustTask(t, TaskConfig{Name: "doc", Description: "Read about {query}", ExpectedOutput: "Summary of {query}", Agent: f.reader, Tools: []Tool{f.docTool}})
	f.web = mustTask(t, TaskConfig{Name: "web", Description: "Search {query}", ExpectedOutput: "Links for {query}", Agent: f.searcher, Tools: []Tool{f.webTool}})
	f.blog = mustTask(t, TaskConfig{Name: "blog", Description: "Write about {query}", ExpectedOutput: "Post on {query}", Agent: f.writer, Upstream: []*Task{f.doc, f.web}})
	return f
}

func (f *fixture) crew(t *testing.T, mem Memory) *Crew {
	t.Helper()
	c, err := New(Config{
		Agents: []Delegate{f.reader, f.searcher, f.writer},
		Tasks:  []*Task{f.doc, f.web, f.blog},
		Memory: mem,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestKickoff_PassesUpstreamOutputsAsContext(t *testing.T) {
	f := newFixture(t)
	res, err := f.crew(t, nil).Kickoff(context.Background(), QueryInput{Query: "What is backpropagation?"})
	if err != nil {
		t.Fatalf("Kickoff() error = %v", err)
	}
	if res.Final.Text != "final post" || res.Final.Task != "blog" {
		t.Errorf("unexpected final output: %+v", res.Final)
	}
	if got := strings.Join(f.model.calls, ","); got != "Reader,Searcher,Writer" {
		t.Errorf("tasks ran in order %s", got)
	}

	prompt := f.model.prompts["Writer"][0]
	docAt := strings.Index(prompt, "doc findings")
	webAt := strings.Index(prompt, "web findings")
	if docAt < 0 || webAt < 0 {
		t.Fatalf("writer prompt is missing upstream context:\n%s", prompt)
	}
	if docAt > webAt {
		t.Errorf("upstream context must follow the declared upstream order")
	}
	if f.docTool.queries[0] != "What is backpropagation?" || f.webTool.queries[0] != "What is backpropagation?" {
		t.Errorf("tools were not queried with the query text")
	}
}

func TestKickoff_ToolFailureAbortsRun(t *testing.T) {
	f := newFixture(t)
	searchErr := errors.New("index unavailable")
	f.docTool.err = searchErr

	res, err := f.crew(t, nil).Kickoff(context.Background(), QueryInput{Query: "q"})
	if err == nil {
		t.Fatal("expected the run to fail")
	}
	if res != nil {
		t.Errorf("a failed run must not return partial results")
	}
	if !errors.Is(err, searchErr) {
		t.Errorf("expected the tool error to be wrapped, got %v", err)
	}
	if len(f.model.prompts["Writer"]) != 0 {
		t.Errorf("writing task must not run after a failure")
	}
	if len(f.webTool.queries) != 0 {
		t.Errorf("later tasks must not run after a failure")
	}
}

func TestKickoff_ModelFailureAbortsRun(t *testing.T) {
	f := newFixture(t)
	quota := errors.New("quota exceeded")
	f.model.errs["Searcher"] = quota

	if _, err := f.crew(t, nil).Kickoff(context.Background(), QueryInput{Query: "q"}); !errors.Is(err, quota) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if len(f.model.prompts["Writer"]) != 0 {
		t.Errorf("writing task must not run after a failure")
	}
}

func TestKickoff_EmptyQuery(t *testing.T) {
	f := newFixture(t)
	if _, err := f.crew(t, nil).Kickoff(context.Background(), QueryInput{Query: "  \t"}); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	if len(f.model.calls) != 0 {
		t.Errorf("no model call expected for an empty query")
	}
}

func TestTask_RendersQueryVerbatim(t *testing.T) {
	f := newFixture(t)
	in := QueryInput{Query: `Why "ReLU" & {not} sigmoid?`}
	if got := f.blog.Description(in); got != `Write about Why "ReLU" & {not} sigmoid?` {
		t.Errorf("unexpected description %q", got)
	}
	if got := f.blog.ExpectedOutput(in); !strings.Contains(got, in.Query) {
		t.Errorf("expected output %q does not contain the query", got)
	}
	if strings.Contains(f.reader.SystemPrompt(in), QueryToken) {
		t.Errorf("system prompt still has an unrendered token")
	}
}

func TestTask_RunWithoutCrew(t *testing.T) {
	f := newFixture(t)
	out, err := f.blog.Run(context.Background(), []Output{{Task: "doc", Agent: "Reader", Text: "given context"}}, QueryInput{Query: "q"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Text != "final post" || out.Agent != "Writer" {
		t.Errorf("unexpected output %+v", out)
	}
	if !strings.Contains(f.model.prompts["Writer"][0], "given context") {
		t.Errorf("context was not folded into the prompt")
	}
}

func TestNew_RejectsInvalidOrder(t *testing.T) {
	f := newFixture(t)
	agents := []Delegate{f.reader, f.searcher, f.writer}

	self := mustTask(t, TaskConfig{Name: "self", Agent: f.reader})
	self.upstream = []*Task{self}
	outsider := mustTask(t, TaskConfig{Name: "outsider", Agent: f.reader})
	orphan := mustTask(t, TaskConfig{Name: "orphan", Agent: f.reader, Upstream: []*Task{outsider}})
	stranger := mustAgent(t, "Stranger", f.model, false)
	foreign := mustTask(t, TaskConfig{Name: "foreign", Agent: stranger})

	cases := []struct {
		name  string
		tasks []*Task
		want  error
	}{
		{"no tasks", nil, ErrNoTasks},
		{"forward reference", []*Task{f.blog, f.doc, f.web}, ErrForwardReference},
		{"self dependency", []*Task{self}, ErrSelfDependency},
		{"unknown upstream", []*Task{orphan}, ErrUnknownUpstream},
		{"duplicate", []*Task{f.doc, f.doc}, ErrDuplicateTask},
		{"agent outside crew", []*Task{foreign}, ErrAgentNotInCrew},
	}
	for _, tc := range cases {
		if _, err := New(Config{Agents: agents, Tasks: tc.tasks}); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestNewAgent_Validation(t *testing.T) {
	model := newScriptedLLM()
	if _, err := NewAgent(AgentConfig{Role: "", Goal: "{query}", LLM: model}); !errors.Is(err, ErrInvalidAgent) {
		t.Errorf("expected ErrInvalidAgent for empty role, got %v", err)
	}
	if _, err := NewAgent(AgentConfig{Role: "r", Goal: "no token", LLM: model}); !errors.Is(err, ErrInvalidAgent) {
		t.Errorf("expected ErrInvalidAgent for goal without token, got %v", err)
	}
	if _, err := NewAgent(AgentConfig{Role: "r", Goal: "{query}"}); !errors.Is(err, ErrInvalidAgent) {
		t.Errorf("expected ErrInvalidAgent without a model, got %v", err)
	}
}

type decliningDelegate struct{ invoked bool }

func (d *decliningDelegate) Role() string         { return "Decliner" }
func (d *decliningDelegate) CanHandle(*Task) bool { return false }
func (d *decliningDelegate) Invoke(context.Context, *Task, Prompt) (string, error) {
	d.invoked = true
	return "should not be used", nil
}

func TestKickoff_DelegatesOnCannotAnswer(t *testing.T) {
	f := newFixture(t)
	f.model.replies["Reader"] = CannotAnswerMarker + ": the document is empty"
	decliner := &decliningDelegate{}

	c, err := New(Config{
		Agents: []Delegate{f.reader, decliner, f.searcher, f.writer},
		Tasks:  []*Task{f.doc, f.web, f.blog},
	})
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Kickoff(context.Background(), QueryInput{Query: "q"})
	if err != nil {
		t.Fatalf("Kickoff() error = %v", err)
	}
	if decliner.invoked {
		t.Errorf("a delegate that cannot handle the task must be skipped")
	}
	if res.Tasks[0].Agent != "Searcher" || res.Tasks[0].Text != "web findings" {
		t.Errorf("expected the first capable delegate to answer, got %+v", res.Tasks[0])
	}
}

func TestKickoff_DelegationLogCarriesRunTrace(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(logrus.InfoLevel)
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	f := newFixture(t)
	f.model.replies["Reader"] = CannotAnswerMarker
	c, err := New(Config{
		Agents: []Delegate{f.reader, f.searcher, f.writer},
		Tasks:  []*Task{f.doc, f.web, f.blog},
		Logger: logger.New("crew-test", "", ""),
	})
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Kickoff(context.Background(), QueryInput{Query: "q"})
	if err != nil {
		t.Fatal(err)
	}

	found := false
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var entry map[string]interface{}
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			continue
		}
		if entry["message"] != "Delegating task" {
			continue
		}
		found = true
		if entry["trace_id"] != res.RunID {
			t.Errorf("delegation entry trace_id = %v, want %s", entry["trace_id"], res.RunID)
		}
	}
	if !found {
		t.Fatalf("no delegation entry logged:\n%s", buf.String())
	}
}

func TestKickoff_NoDelegationWhenDisallowed(t *testing.T) {
	f := newFixture(t)
	f.reader = mustAgent(t, "Reader", f.model, false)
	f.doc = mustTask(t, TaskConfig{Name: "doc", Description: "d {query}", Agent: f.reader})
	f.blog = mustTask(t, TaskConfig{Name: "blog", Description: "b {query}", Agent: f.writer, Upstream: []*Task{f.doc, f.web}})
	f.model.replies["Reader"] = CannotAnswerMarker

	_, err := f.crew(t, nil).Kickoff(context.Background(), QueryInput{Query: "q"})
	if !errors.Is(err, ErrCannotAnswer) {
		t.Fatalf("expected ErrCannotAnswer, got %v", err)
	}
	if len(f.model.prompts["Searcher"]) != 0 {
		t.Errorf("no delegate may run when delegation is disallowed")
	}
}

func TestKickoff_MemoryCarriesPreviousTurns(t *testing.T) {
	f := newFixture(t)
	mem := &sliceMemory{}
	c := f.crew(t, mem)

	if _, err := c.Kickoff(context.Background(), QueryInput{Query: "first question"}); err != nil {
		t.Fatal(err)
	}
	if len(mem.turns) != 1 || mem.turns[0].Response != "final post" {
		t.Fatalf("expected one stored turn, got %+v", mem.turns)
	}
	if _, err := c.Kickoff(context.Background(), QueryInput{Query: "second question"}); err != nil {
		t.Fatal(err)
	}
	second := f.model.prompts["Reader"][1]
	if !strings.Contains(second, "first question") {
		t.Errorf("second run prompt lacks the previous turn:\n%s", second)
	}
	if strings.Contains(f.model.prompts["Reader"][0], "Previous conversation") {
		t.Errorf("first run must not have history")
	}
}
