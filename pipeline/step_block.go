package pipeline

// BlockStep pauses the build until somebody unblocks it, optionally
// collecting form input. Unlike other steps it labels itself through the
// "block" attribute, so Pipeline.BlockStep binds the label at construction.
//
// The plain attributes are exported fields; set them directly inside the
// configuration block. Fields append through TextField and SelectField so
// their keys are checked and their order preserved.
type BlockStep struct {
	Block    string   `yaml:"block"`
	Prompt   string   `yaml:"prompt,omitempty"`
	Branches Branches `yaml:"branches,omitempty"`
	Fields   []Field  `yaml:"fields,omitempty"`

	// RemainingFields passes through step attributes not modelled above.
	RemainingFields map[string]any `yaml:",inline"`
}

func newBlockStep(label string) *BlockStep {
	return &BlockStep{Block: label}
}

// TextField appends a free-text input field. The key identifies the entered
// value in build meta-data and must not be empty.
func (s *BlockStep) TextField(key string, configure ...func(*TextField)) *TextField {
	if key == "" {
		panic("pipeline: block step text field requires a key")
	}
	f := &TextField{Key: key}
	for _, fn := range configure {
		fn(f)
	}
	s.Fields = append(s.Fields, f)
	return f
}

// SelectField appends a select input field. The key identifies the chosen
// value in build meta-data and must not be empty.
func (s *BlockStep) SelectField(key string, configure ...func(*SelectField)) *SelectField {
	if key == "" {
		panic("pipeline: block step select field requires a key")
	}
	f := &SelectField{Key: key}
	for _, fn := range configure {
		fn(f)
	}
	s.Fields = append(s.Fields, f)
	return f
}

// MarshalJSON marshals the step to JSON. Special handling is needed because
// yaml.v3 has "inline" but encoding/json has no concept of it.
func (s *BlockStep) MarshalJSON() ([]byte, error) {
	return inlineFriendlyMarshalJSON(s)
}

func (s *BlockStep) interpolate(tf stringTransformer) error {
	var err error
	if s.Block, err = tf.Transform(s.Block); err != nil {
		return err
	}
	if s.Prompt, err = tf.Transform(s.Prompt); err != nil {
		return err
	}
	if err := interpolateSlice(tf, s.Branches); err != nil {
		return err
	}
	if err := interpolateSlice(tf, s.Fields); err != nil {
		return err
	}
	return interpolateMap(tf, s.RemainingFields)
}

func (*BlockStep) stepTag() {}

// Field is a form input on a block step: *TextField or *SelectField.
type Field interface {
	fieldTag()

	selfInterpolater
}

// TextField collects a line of text when the build is unblocked.
type TextField struct {
	Text     string `yaml:"text,omitempty"`
	Key      string `yaml:"key"`
	Hint     string `yaml:"hint,omitempty"`
	Required bool   `yaml:"required,omitempty"`
	Default  string `yaml:"default,omitempty"`

	RemainingFields map[string]any `yaml:",inline"`
}

// MarshalJSON marshals the field, omitting attributes that were never set.
func (f *TextField) MarshalJSON() ([]byte, error) {
	return inlineFriendlyMarshalJSON(f)
}

func (f *TextField) interpolate(tf stringTransformer) error {
	var err error
	if f.Text, err = tf.Transform(f.Text); err != nil {
		return err
	}
	if f.Key, err = tf.Transform(f.Key); err != nil {
		return err
	}
	if f.Hint, err = tf.Transform(f.Hint); err != nil {
		return err
	}
	if f.Default, err = tf.Transform(f.Default); err != nil {
		return err
	}
	return interpolateMap(tf, f.RemainingFields)
}

func (*TextField) fieldTag() {}

// SelectField collects one (or, with Multiple, several) of a fixed set of
// options when the build is unblocked.
type SelectField struct {
	Select   string `yaml:"select,omitempty"`
	Key      string `yaml:"key"`
	Hint     string `yaml:"hint,omitempty"`
	Required bool   `yaml:"required,omitempty"`
	Multiple bool   `yaml:"multiple,omitempty"`

	// Default is the pre-selected option value, or a []string of values
	// when Multiple is set.
	Default any `yaml:"default,omitempty"`

	Options []*SelectOption `yaml:"options,omitempty"`

	RemainingFields map[string]any `yaml:",inline"`
}

// Option appends a select option. Options keep their append order.
func (f *SelectField) Option(label, value string) {
	f.Options = append(f.Options, &SelectOption{Label: label, Value: value})
}

// MarshalJSON marshals the field, omitting attributes that were never set.
func (f *SelectField) MarshalJSON() ([]byte, error) {
	return inlineFriendlyMarshalJSON(f)
}

func (f *SelectField) interpolate(tf stringTransformer) error {
	var err error
	if f.Select, err = tf.Transform(f.Select); err != nil {
		return err
	}
	if f.Key, err = tf.Transform(f.Key); err != nil {
		return err
	}
	if f.Hint, err = tf.Transform(f.Hint); err != nil {
		return err
	}
	if f.Default, err = interpolateAny(tf, f.Default); err != nil {
		return err
	}
	if err := interpolateSlice(tf, f.Options); err != nil {
		return err
	}
	return interpolateMap(tf, f.RemainingFields)
}

func (*SelectField) fieldTag() {}

// SelectOption is one choice offered by a SelectField.
type SelectOption struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// MarshalJSON marshals the option with its wire-format key names.
func (o *SelectOption) MarshalJSON() ([]byte, error) {
	return inlineFriendlyMarshalJSON(o)
}

func (o *SelectOption) interpolate(tf stringTransformer) error {
	var err error
	if o.Label, err = tf.Transform(o.Label); err != nil {
		return err
	}
	o.Value, err = tf.Transform(o.Value)
	return err
}
