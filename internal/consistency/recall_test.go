package consistency

import (
	"strings"
	"testing"
	"time"

	"github.com/kagami-ai/kagami/internal/model"
)

func TestRecallGroundedClaimPasses(t *testing.T) {
	text := "你之前提到过你喜欢先给结论。"
	rc := recallContext{
		Memories: []string{"memory=用户偏好：先给结论再给步骤"},
		Strict:   true,
		Now:      time.Now(),
	}
	c := recallGround(text, rc)
	if c.Corrected {
		t.Errorf("grounded recall claim should pass unchanged, got %q (%v)", c.Text, c.Flags)
	}
}

func TestRecallUngroundedClaimReplaced(t *testing.T) {
	text := "记得你说过你很喜欢爬山。"
	rc := recallContext{Strict: true, Now: time.Now()}
	c := recallGround(text, rc)
	if !c.Corrected {
		t.Fatal("unsupported recall claim must be rewritten")
	}
	if !strings.Contains(c.Text, recallDisclaimer) {
		t.Errorf("expected disclaimer, got %q", c.Text)
	}
	if len(c.Flags) != 1 || c.Flags[0] != model.RuleUngroundedRecall {
		t.Errorf("expected single ungrounded_recall flag, got %v", c.Flags)
	}
}

func TestRecallDisabledWithoutStrictMode(t *testing.T) {
	text := "记得你说过你很喜欢爬山。"
	c := recallGround(text, recallContext{Strict: false, Now: time.Now()})
	if c.Corrected {
		t.Error("recall grounding must be a no-op when strict mode is off")
	}
}

func TestRecallOnlyClaimSentenceRewritten(t *testing.T) {
	text := "记得你说过你很喜欢爬山。今天想出去走走吗？"
	rc := recallContext{Strict: true, Now: time.Now()}
	c := recallGround(text, rc)
	if !c.Corrected {
		t.Fatal("expected rewrite")
	}
	if !strings.Contains(c.Text, "今天想出去走走吗？") {
		t.Errorf("non-claim sentence must survive, got %q", c.Text)
	}
}

func TestStaleImmediateReferenceSoftened(t *testing.T) {
	now := time.Now()
	text := "你刚才说「想学 Rust」，我觉得现在就可以开始。"
	rc := recallContext{
		Strict: true,
		Now:    now,
		LifeEvents: []model.LifeEvent{
			{Type: "user_message", TS: now.Add(-3 * time.Hour).UnixMilli(), Payload: "我想学 Rust"},
		},
	}
	c := recallGround(text, rc)
	if !c.Corrected {
		t.Fatal("stale immediate reference must be softened")
	}
	if strings.Contains(c.Text, "刚才") {
		t.Errorf("expected 刚才 replaced, got %q", c.Text)
	}
	if !strings.Contains(c.Text, "之前") {
		t.Errorf("expected 之前 substitution, got %q", c.Text)
	}
	found := false
	for _, f := range c.Flags {
		if f == model.RuleTemporalDeicticMismatch {
			found = true
		}
	}
	if !found {
		t.Errorf("expected temporal flag, got %v", c.Flags)
	}
}

func TestFreshImmediateReferenceKept(t *testing.T) {
	now := time.Now()
	text := "你刚才说「想学 Rust」，我觉得现在就可以开始。"
	rc := recallContext{
		Strict: true,
		Now:    now,
		LifeEvents: []model.LifeEvent{
			{Type: "user_message", TS: now.Add(-5 * time.Minute).UnixMilli(), Payload: "我想学 Rust"},
		},
	}
	c := recallGround(text, rc)
	if c.Corrected {
		t.Errorf("reference inside the window must stay, got %q", c.Text)
	}
}

func TestBuildCorpusStripsMemoryPrefixes(t *testing.T) {
	rc := recallContext{
		Memories: []string{"life=去了一趟杭州", "pinned=喜欢喝美式", "没有前缀"},
		Blocks:   []model.MemoryBlock{{ID: "b1", Source: "user", Content: "养了一只猫"}},
		LifeEvents: []model.LifeEvent{
			{Type: "user_message", TS: 1, Payload: "今晚想吃火锅"},
			{Type: "system_tick", TS: 2, Payload: "noise"},
		},
	}
	corpus := buildCorpus(rc)
	joined := strings.Join(corpus, "|")
	for _, want := range []string{"去了一趟杭州", "喜欢喝美式", "没有前缀", "养了一只猫", "今晚想吃火锅"} {
		if !strings.Contains(joined, want) {
			t.Errorf("corpus missing %q: %v", want, corpus)
		}
	}
	if strings.Contains(joined, "noise") {
		t.Errorf("non-dialogue event leaked into corpus: %v", corpus)
	}
	if strings.Contains(joined, "life=") {
		t.Errorf("prefix not stripped: %v", corpus)
	}
}
