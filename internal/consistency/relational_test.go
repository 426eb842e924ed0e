package consistency

import (
	"strings"
	"testing"

	"github.com/kagami-ai/kagami/internal/model"
)

func TestRelationalServileReplaced(t *testing.T) {
	c := relationalGuard("主人，我什么都听您的。", relationalContext{PersonaName: "小镜"})
	if !c.Corrected {
		t.Fatal("servile sentence must be rewritten")
	}
	if c.Text != servileReplacement {
		t.Errorf("expected equal-footing replacement, got %q", c.Text)
	}
	if len(c.Flags) != 1 || c.Flags[0] != model.FlagServileSelfPositioning {
		t.Errorf("expected servile flag, got %v", c.Flags)
	}
}

func TestRelationalApologyStack(t *testing.T) {
	text := "对不起，我来晚了。抱歉让你久等。真的很抱歉。"
	c := relationalGuard(text, relationalContext{PersonaName: "小镜"})
	if !c.Corrected {
		t.Fatal("stacked apologies must be trimmed")
	}
	if n := len(apologyRe.FindAllString(c.Text, -1)); n != 1 {
		t.Errorf("expected exactly one apology kept, got %d in %q", n, c.Text)
	}
	found := false
	for _, f := range c.Flags {
		if f == model.FlagExcessiveApology {
			found = true
		}
	}
	if !found {
		t.Errorf("expected excessive_apology flag, got %v", c.Flags)
	}
}

func TestRelationalTwoApologiesPass(t *testing.T) {
	text := "对不起，我来晚了。抱歉让你久等。"
	c := relationalGuard(text, relationalContext{PersonaName: "小镜"})
	if c.Corrected {
		t.Errorf("two apologies are fine, got %q (%v)", c.Text, c.Flags)
	}
}

func TestRelationalIntimacyOutsideAdultContext(t *testing.T) {
	c := relationalGuard("晚安，老公。", relationalContext{PersonaName: "小镜", IsAdultContext: false})
	if !c.Corrected {
		t.Fatal("spousal address must be softened outside adult context")
	}
	if strings.Contains(c.Text, "老公") {
		t.Errorf("expected 老公 replaced, got %q", c.Text)
	}
	found := false
	for _, f := range c.Flags {
		if f == model.FlagUnearnedIntimacy {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unearned_intimacy flag, got %v", c.Flags)
	}
}

func TestRelationalIntimacyAllowedInAdultContext(t *testing.T) {
	c := relationalGuard("晚安，老公。", relationalContext{PersonaName: "小镜", IsAdultContext: true})
	if c.Corrected {
		t.Errorf("adult context permits the address, got %q", c.Text)
	}
}
