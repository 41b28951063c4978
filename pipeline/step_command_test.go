package pipeline

import (
	"testing"
	"time"
)

// stepJSON builds a single command step on a fresh pipeline and returns its
// rendered JSON.
func stepJSON(t *testing.T, conf Config, configure func(*CommandStep)) string {
	t.Helper()
	p := New(conf)
	return renderJSON(t, p.CommandStep(configure))
}

func TestCommandStepDefaultQueue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		conf Config
		want string
	}{
		{
			name: "zero config falls back to default",
			conf: Config{},
			want: `{"command":"make","agents":{"queue":"default"}}`,
		},
		{
			name: "configured default queue",
			conf: Config{DefaultAgentQueue: "builder"},
			want: `{"command":"make","agents":{"queue":"builder"}}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got := stepJSON(t, test.conf, func(s *CommandStep) {
				s.Command("make")
			})
			if got != test.want {
				t.Errorf("step marshaled to %s, want %s", got, test.want)
			}
		})
	}
}

func TestAgentQueueInRegion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		conf   Config
		region string
		want   string
	}{
		{
			name:   "primary region keeps base name",
			conf:   Config{},
			region: "us-east-1",
			want:   `{"agents":{"queue":"deploy"}}`,
		},
		{
			name:   "other region qualifies the name",
			conf:   Config{},
			region: "eu-west-1",
			want:   `{"agents":{"queue":"deploy-eu-west-1"}}`,
		},
		{
			name:   "configured primary region",
			conf:   Config{PrimaryRegion: "ap-southeast-2"},
			region: "ap-southeast-2",
			want:   `{"agents":{"queue":"deploy"}}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got := stepJSON(t, test.conf, func(s *CommandStep) {
				s.AgentQueueInRegion("deploy", test.region)
			})
			if got != test.want {
				t.Errorf("step marshaled to %s, want %s", got, test.want)
			}
		})
	}
}

func TestCommandAndCommandsAreExclusive(t *testing.T) {
	t.Parallel()

	t.Run("command replaces commands", func(t *testing.T) {
		t.Parallel()
		got := stepJSON(t, Config{}, func(s *CommandStep) {
			s.Commands("make build", "make test")
			s.Command("make all")
		})
		want := `{"command":"make all","agents":{"queue":"default"}}`
		if got != want {
			t.Errorf("step marshaled to %s, want %s", got, want)
		}
	})

	t.Run("commands replaces command", func(t *testing.T) {
		t.Parallel()
		got := stepJSON(t, Config{}, func(s *CommandStep) {
			s.Command("make all")
			s.Commands("make build", "make test")
		})
		want := `{"command":["make build","make test"],"agents":{"queue":"default"}}`
		if got != want {
			t.Errorf("step marshaled to %s, want %s", got, want)
		}
	})
}

func TestAutomaticRetry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		configure func(*CommandStep)
		want      string
	}{
		{
			name: "bare call renders boolean shorthand",
			configure: func(s *CommandStep) {
				s.AutomaticRetry()
			},
			want: `{"retry":{"automatic":true},"agents":{"queue":"default"}}`,
		},
		{
			name: "setting a field promotes to the structured form",
			configure: func(s *CommandStep) {
				s.AutomaticRetry(func(r *AutomaticRetry) {
					r.ExitStatus(255)
				})
			},
			want: `{"retry":{"automatic":{"exit_status":255}},"agents":{"queue":"default"}}`,
		},
		{
			name: "promotion replaces an earlier shorthand",
			configure: func(s *CommandStep) {
				s.AutomaticRetry()
				s.AutomaticRetry(func(r *AutomaticRetry) {
					r.ExitStatus(-1)
					r.Limit(2)
				})
			},
			want: `{"retry":{"automatic":{"exit_status":-1,"limit":2}},"agents":{"queue":"default"}}`,
		},
		{
			name: "bare call after promotion keeps the structure",
			configure: func(s *CommandStep) {
				s.AutomaticRetry(func(r *AutomaticRetry) {
					r.Limit(3)
				})
				s.AutomaticRetry()
			},
			want: `{"retry":{"automatic":{"limit":3}},"agents":{"queue":"default"}}`,
		},
		{
			name: "configure that sets nothing keeps the shorthand",
			configure: func(s *CommandStep) {
				s.AutomaticRetry(func(r *AutomaticRetry) {})
			},
			want: `{"retry":{"automatic":true},"agents":{"queue":"default"}}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := stepJSON(t, Config{}, test.configure); got != test.want {
				t.Errorf("step marshaled to %s, want %s", got, test.want)
			}
		})
	}
}

func TestSkipLastCallWins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		configure func(*CommandStep)
		want      string
	}{
		{
			name: "bare skip",
			configure: func(s *CommandStep) {
				s.Skip()
			},
			want: `{"skip":true,"agents":{"queue":"default"}}`,
		},
		{
			name: "skip with reason",
			configure: func(s *CommandStep) {
				s.Skip("migrations frozen")
			},
			want: `{"skip":"migrations frozen","agents":{"queue":"default"}}`,
		},
		{
			name: "reason then bare leaves true",
			configure: func(s *CommandStep) {
				s.Skip("migrations frozen")
				s.Skip()
			},
			want: `{"skip":true,"agents":{"queue":"default"}}`,
		},
		{
			name: "bare then reason leaves the reason",
			configure: func(s *CommandStep) {
				s.Skip()
				s.Skip("migrations frozen")
			},
			want: `{"skip":"migrations frozen","agents":{"queue":"default"}}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := stepJSON(t, Config{}, test.configure); got != test.want {
				t.Errorf("step marshaled to %s, want %s", got, test.want)
			}
		})
	}
}

func TestStepEnvMergesAdditively(t *testing.T) {
	t.Parallel()

	got := stepJSON(t, Config{}, func(s *CommandStep) {
		s.Env("RAILS_ENV", "test")
		s.Env("COVERAGE", "1")
		s.Env("RAILS_ENV", "production")
	})
	want := `{"agents":{"queue":"default"},"env":{"RAILS_ENV":"production","COVERAGE":"1"}}`
	if got != want {
		t.Errorf("step marshaled to %s, want %s", got, want)
	}
}

func TestTimeoutClamping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		configure func(*CommandStep)
		want      string
	}{
		{
			name: "sub-minute durations clamp to one minute",
			configure: func(s *CommandStep) {
				s.Timeout(90 * time.Second)
			},
			want: `{"agents":{"queue":"default"},"timeout_in_minutes":1}`,
		},
		{
			name: "durations floor to whole minutes",
			configure: func(s *CommandStep) {
				s.Timeout(2*time.Minute + 30*time.Second)
			},
			want: `{"agents":{"queue":"default"},"timeout_in_minutes":2}`,
		},
		{
			name: "zero minutes clamps to one",
			configure: func(s *CommandStep) {
				s.TimeoutMinutes(0)
			},
			want: `{"agents":{"queue":"default"},"timeout_in_minutes":1}`,
		},
		{
			name: "plain minutes pass through",
			configure: func(s *CommandStep) {
				s.TimeoutMinutes(45)
			},
			want: `{"agents":{"queue":"default"},"timeout_in_minutes":45}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := stepJSON(t, Config{}, test.configure); got != test.want {
				t.Errorf("step marshaled to %s, want %s", got, test.want)
			}
		})
	}
}

func TestParallelismRejectsNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Parallelism(0) did not panic")
		}
	}()
	p := New(Config{})
	p.CommandStep(func(s *CommandStep) {
		s.Parallelism(0)
	})
}

func TestConcurrencyFieldsAreIndependent(t *testing.T) {
	t.Parallel()

	t.Run("limit without group", func(t *testing.T) {
		t.Parallel()
		got := stepJSON(t, Config{}, func(s *CommandStep) {
			s.Concurrency(1)
		})
		want := `{"agents":{"queue":"default"},"concurrency":1}`
		if got != want {
			t.Errorf("step marshaled to %s, want %s", got, want)
		}
	})

	t.Run("group without limit", func(t *testing.T) {
		t.Parallel()
		got := stepJSON(t, Config{}, func(s *CommandStep) {
			s.ConcurrencyGroup("deploy/prod")
		})
		want := `{"agents":{"queue":"default"},"concurrency_group":"deploy/prod"}`
		if got != want {
			t.Errorf("step marshaled to %s, want %s", got, want)
		}
	})
}

func TestCommandStepRenderOrder(t *testing.T) {
	t.Parallel()

	got := stepJSON(t, Config{}, func(s *CommandStep) {
		s.Attribute("priority", 5)
		s.SoftFail()
		s.If(`build.branch == "main"`)
		s.DependsOn("lint", "build")
		s.Parallelism(4)
		s.ArtifactPath("log/**/*", "coverage/**/*")
		s.Branch("main", "release/*")
		s.Key("test")
		s.Label(":test_tube: Test")
		s.Commands("make setup", "make test")
	})
	want := `{"label":":test_tube: Test","key":"test",` +
		`"command":["make setup","make test"],` +
		`"agents":{"queue":"default"},` +
		`"branches":"main release/*",` +
		`"artifact_paths":["log/**/*","coverage/**/*"],` +
		`"parallelism":4,` +
		`"depends_on":["lint","build"],` +
		`"if":"build.branch == \"main\"",` +
		`"soft_fail":true,` +
		`"priority":5}`
	if got != want {
		t.Errorf("step marshaled to %s, want %s", got, want)
	}
}
