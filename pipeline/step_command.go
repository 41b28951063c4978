package pipeline

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/buildkite/pipelinegen/internal/ordered"
)

// CommandStep models a step that runs one or more shell commands on an
// agent. Construct it through Pipeline.CommandStep so the configured default
// agent queue is injected before the configuration block runs.
type CommandStep struct {
	conf Config

	label            string
	key              string
	command          any // a single string or a []string, via Command/Commands
	queue            string
	branches         Branches
	env              *ordered.MapSS
	artifactPaths    []string
	concurrency      *int
	concurrencyGroup string
	parallelism      *int
	dependsOn        []string
	condition        string
	softFail         bool
	retryAutomatic   any // boolean shorthand true, or *AutomaticRetry
	skip             any // true, or a reason string
	timeoutMinutes   *int
	plugins          Plugins
	extra            map[string]any
}

func newCommandStep(conf Config) *CommandStep {
	return &CommandStep{
		conf:  conf,
		queue: conf.DefaultAgentQueue,
		env:   ordered.NewMap[string, string](0),
	}
}

// Label sets the display label for the step.
func (c *CommandStep) Label(label string) {
	c.label = label
}

// Key gives the step a stable identifier other steps can depend on.
func (c *CommandStep) Key(key string) {
	c.key = key
}

// Branch appends branch-match patterns restricting where the step runs.
func (c *CommandStep) Branch(patterns ...string) {
	c.branches = append(c.branches, patterns...)
}

// Command sets the step to run a single command line. It replaces any
// commands set earlier - command and commands are mutually exclusive, and
// the last setter wins.
func (c *CommandStep) Command(command string) {
	c.command = command
}

// Commands sets the step to run a sequence of command lines, replacing any
// single command set earlier.
func (c *CommandStep) Commands(commands ...string) {
	c.command = append([]string(nil), commands...)
}

// AgentQueue targets a specific agent queue instead of the configured
// default.
func (c *CommandStep) AgentQueue(name string) {
	c.queue = name
}

// AgentQueueInRegion targets a region-qualified queue. Queues in the primary
// region keep the base name; elsewhere the queue is "name-region".
func (c *CommandStep) AgentQueueInRegion(name, region string) {
	c.queue = c.conf.queueName(name, region)
}

// ArtifactPath appends artifact upload globs. Paths accumulate across calls.
func (c *CommandStep) ArtifactPath(globs ...string) {
	c.artifactPaths = append(c.artifactPaths, globs...)
}

// Concurrency caps how many jobs spawned from this step run at once. The
// backend requires a concurrency group whenever a limit is set; like the
// group, the limit is recorded as an independent field write and the pair is
// not cross-validated here.
func (c *CommandStep) Concurrency(limit int) {
	c.concurrency = &limit
}

// ConcurrencyGroup names the group a concurrency limit applies to.
func (c *CommandStep) ConcurrencyGroup(group string) {
	c.concurrencyGroup = group
}

// Env sets a step-level environment variable. Variables merge additively
// across calls, with later calls overriding the same name.
func (c *CommandStep) Env(name, value string) {
	c.env.Set(name, value)
}

// Parallelism fans the step out into n parallel jobs. n must be positive.
func (c *CommandStep) Parallelism(n int) {
	if n < 1 {
		panic(fmt.Sprintf("pipeline: parallelism must be positive, got %d", n))
	}
	c.parallelism = &n
}

// DependsOn appends keys of steps this step waits for.
func (c *CommandStep) DependsOn(keys ...string) {
	c.dependsOn = append(c.dependsOn, keys...)
}

// If restricts the step with a conditional expression.
func (c *CommandStep) If(condition string) {
	c.condition = condition
}

// SoftFail lets the step fail without failing the build.
func (c *CommandStep) SoftFail() {
	c.softFail = true
}

// AutomaticRetry enables automatic retries. With no arguments it records the
// boolean shorthand (retry.automatic: true). Configuration functions promote
// the field to its structured form on the first field set; once promoted the
// shorthand is gone and the rendered value is the structure, never both.
func (c *CommandStep) AutomaticRetry(configure ...func(*AutomaticRetry)) {
	ar, promoted := c.retryAutomatic.(*AutomaticRetry)
	if !promoted {
		ar = new(AutomaticRetry)
	}
	for _, fn := range configure {
		fn(ar)
	}
	if ar.exitStatus == nil && ar.limit == nil {
		// No field was ever set, so the shorthand stands.
		c.retryAutomatic = true
		return
	}
	c.retryAutomatic = ar
}

// Skip disables the step. With no argument it records a bare true; with a
// reason it records the reason instead. Calls are not cumulative - only the
// last call's value is serialized.
func (c *CommandStep) Skip(reason ...string) {
	if len(reason) > 0 && reason[0] != "" {
		c.skip = reason[0]
		return
	}
	c.skip = true
}

// Timeout bounds how long a job spawned from the step may run. The duration
// is floored to whole minutes and clamped to a minimum of one minute.
func (c *CommandStep) Timeout(d time.Duration) {
	c.TimeoutMinutes(int(d / time.Minute))
}

// TimeoutMinutes bounds the job runtime in minutes, clamped to a minimum of
// one.
func (c *CommandStep) TimeoutMinutes(minutes int) {
	if minutes < 1 {
		minutes = 1
	}
	c.timeoutMinutes = &minutes
}

// Plugin appends a plugin reference. A bare name is qualified with the
// configured default version for that name, or left unqualified when no
// version is known; an explicit "name#version" composite passes through
// unmodified. Plugin identity is positional - referencing the same plugin
// twice appends two entries.
func (c *CommandStep) Plugin(name string, configure func(*PluginConfig)) {
	var conf any
	if configure != nil {
		pc := newPluginConfig()
		configure(pc)
		conf = pc
	}
	c.plugins = append(c.plugins, &Plugin{
		Source: c.conf.pluginKey(name),
		Config: conf,
	})
}

// Docker wraps the step's command in the docker plugin.
func (c *CommandStep) Docker(configure func(*Docker)) {
	d := new(Docker)
	if configure != nil {
		configure(d)
	}
	c.plugins = append(c.plugins, &Plugin{
		Source: c.conf.pluginKey("docker"),
		Config: d,
	})
}

// DockerCompose runs the step's command through the docker-compose plugin.
// Conventional compose files found in the project root pre-seed the config
// list before configure runs; files added by configure append after them.
func (c *CommandStep) DockerCompose(configure func(*DockerCompose)) {
	d := newDockerCompose(c.conf.ProjectRoot)
	if configure != nil {
		configure(d)
	}
	c.plugins = append(c.plugins, &Plugin{
		Source: c.conf.pluginKey("docker-compose"),
		Config: d,
	})
}

// Attribute records an attribute this model has no first-class setter for.
// It renders at the top level of the step, after the modelled attributes.
func (c *CommandStep) Attribute(key string, value any) {
	if c.extra == nil {
		c.extra = make(map[string]any)
	}
	c.extra[key] = value
}

func (c *CommandStep) asMap() *ordered.MapSA {
	m := ordered.NewMap[string, any](8)
	if c.label != "" {
		m.Set("label", c.label)
	}
	if c.key != "" {
		m.Set("key", c.key)
	}
	if c.command != nil {
		m.Set("command", c.command)
	}
	if c.queue != "" {
		m.Set("agents", ordered.MapFromItems(ordered.TupleSA{Key: "queue", Value: c.queue}))
	}
	if len(c.branches) > 0 {
		m.Set("branches", c.branches)
	}
	if !c.env.IsZero() {
		m.Set("env", c.env)
	}
	if len(c.artifactPaths) > 0 {
		m.Set("artifact_paths", c.artifactPaths)
	}
	if c.concurrency != nil {
		m.Set("concurrency", *c.concurrency)
	}
	if c.concurrencyGroup != "" {
		m.Set("concurrency_group", c.concurrencyGroup)
	}
	if c.parallelism != nil {
		m.Set("parallelism", *c.parallelism)
	}
	if len(c.dependsOn) > 0 {
		m.Set("depends_on", c.dependsOn)
	}
	if c.condition != "" {
		m.Set("if", c.condition)
	}
	if c.softFail {
		m.Set("soft_fail", true)
	}
	if c.retryAutomatic != nil {
		m.Set("retry", ordered.MapFromItems(ordered.TupleSA{Key: "automatic", Value: c.retryAutomatic}))
	}
	if c.skip != nil {
		m.Set("skip", c.skip)
	}
	if c.timeoutMinutes != nil {
		m.Set("timeout_in_minutes", *c.timeoutMinutes)
	}
	if len(c.plugins) > 0 {
		m.Set("plugins", c.plugins)
	}
	for _, k := range slices.Sorted(maps.Keys(c.extra)) {
		m.Set(k, c.extra[k])
	}
	return m
}

// MarshalJSON marshals the step as a flat object containing only the
// attributes that were explicitly set (plus the agent queue, which every
// command step carries).
func (c *CommandStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.asMap())
}

// MarshalYAML returns the same shape for YAML encoding.
func (c *CommandStep) MarshalYAML() (any, error) {
	return c.asMap(), nil
}

func (c *CommandStep) interpolate(tf stringTransformer) error {
	var err error
	if c.label, err = tf.Transform(c.label); err != nil {
		return err
	}
	if c.command, err = interpolateAny(tf, c.command); err != nil {
		return err
	}
	if err := interpolateSlice(tf, c.branches); err != nil {
		return err
	}
	if err := interpolateOrderedMap(tf, c.env); err != nil {
		return err
	}
	if err := interpolateSlice(tf, c.artifactPaths); err != nil {
		return err
	}
	if c.skip, err = interpolateAny(tf, c.skip); err != nil {
		return err
	}
	if err := interpolateSlice(tf, c.plugins); err != nil {
		return err
	}
	return interpolateMap(tf, c.extra)
}

func (*CommandStep) stepTag() {}

// AutomaticRetry is the structured form of retry.automatic.
type AutomaticRetry struct {
	exitStatus *int
	limit      *int
}

// ExitStatus restricts automatic retries to jobs exiting with this status.
func (r *AutomaticRetry) ExitStatus(status int) {
	r.exitStatus = &status
}

// Limit caps the number of automatic retries.
func (r *AutomaticRetry) Limit(limit int) {
	r.limit = &limit
}

func (r *AutomaticRetry) asMap() *ordered.MapSA {
	m := ordered.NewMap[string, any](2)
	if r.exitStatus != nil {
		m.Set("exit_status", *r.exitStatus)
	}
	if r.limit != nil {
		m.Set("limit", *r.limit)
	}
	return m
}

// MarshalJSON marshals only the fields that were set.
func (r *AutomaticRetry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.asMap())
}

// MarshalYAML returns the same shape for YAML encoding.
func (r *AutomaticRetry) MarshalYAML() (any, error) {
	return r.asMap(), nil
}
