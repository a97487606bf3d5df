package plugin

import "testing"

type noopPlugin struct {
	BasePlugin
}

func TestRegisterAndLookup(t *testing.T) {
	Register("registrytest:Noop", func() Handler { return &noopPlugin{} })

	factory, ok := Lookup("registrytest:Noop")
	if !ok {
		t.Fatal("expected registered spec to be found")
	}
	if _, isHandler := factory().(Handler); !isHandler {
		t.Fatal("factory must produce a Handler")
	}
}

func TestLookupMissingSpec(t *testing.T) {
	if _, ok := Lookup("registrytest:DoesNotExist"); ok {
		t.Fatal("expected missing spec to not be found")
	}
}

func TestRegisterOverwritesExisting(t *testing.T) {
	calls := 0
	Register("registrytest:Overwrite", func() Handler { calls++; return &noopPlugin{} })
	Register("registrytest:Overwrite", func() Handler { calls += 10; return &noopPlugin{} })

	factory, ok := Lookup("registrytest:Overwrite")
	if !ok {
		t.Fatal("expected spec to still resolve after overwrite")
	}
	factory()
	if calls != 10 {
		t.Fatalf("expected the second registration to win, got calls=%d", calls)
	}
}
