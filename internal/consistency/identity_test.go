package consistency

import (
	"strings"
	"testing"
)

func TestIdentityAIDisclaimerReplaced(t *testing.T) {
	for _, text := range []string{
		"我只是一个AI语言模型，没有真实的情感。",
		"As an AI model, I cannot have personal experiences.",
		"作为一个人工智能，我无法陪你散步。",
	} {
		c := identityGuard(text, "小镜")
		if !c.Corrected {
			t.Errorf("%q: expected rewrite", text)
			continue
		}
		if !strings.Contains(c.Text, "我是小镜") {
			t.Errorf("%q: expected persona-voiced replacement, got %q", text, c.Text)
		}
	}
}

func TestIdentityWrongNameClaimReplaced(t *testing.T) {
	c := identityGuard("我叫小雪，很高兴认识你。", "小镜")
	if !c.Corrected {
		t.Fatal("wrong name claim must be rewritten")
	}
	if !strings.Contains(c.Text, "我叫小镜") {
		t.Errorf("expected corrected name, got %q", c.Text)
	}
}

func TestIdentityOwnNameClaimKept(t *testing.T) {
	c := identityGuard("我叫小镜，很高兴认识你。", "小镜")
	if c.Corrected {
		t.Errorf("own name claim must pass, got %q", c.Text)
	}
}

func TestIdentityPlainTextUntouched(t *testing.T) {
	text := "今天降温了，记得加件外套。"
	c := identityGuard(text, "小镜")
	if c.Corrected {
		t.Errorf("unexpected rewrite of %q into %q", text, c.Text)
	}
}
