package jsoner

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	c "github.com/unkn0wn-root/jsoner/codec"
)

type counter struct{ N int }

type wrapper struct {
	Inner nested
}

// ToStr embeds a whole document produced by the default serializer.
func (w wrapper) ToStr() (string, error) {
	b, err := Dumps(map[string]any{"inner": w.Inner})
	return string(b), err
}

func (w *wrapper) FromStr(s string) error {
	v, err := Loads([]byte(s))
	if err != nil {
		return err
	}
	inner, ok := v.(map[string]any)["inner"].(nested)
	if !ok {
		return errors.New("inner is not rebuilt")
	}
	w.Inner = inner
	return nil
}

func registerNested(t *testing.T, s *Serializer) {
	t.Helper()
	mustRegister[strObj](t, s, "")
	mustRegister[dictObj](t, s, "")
	mustRegister[nested](t, s, "")
}

func TestRoundTripPlain(t *testing.T) {
	s := newTestSerializer(t, nil)
	if got := mustLoads(t, s, `[1, 2, 3, 4, 5]`); !reflect.DeepEqual(got, []any{1.0, 2.0, 3.0, 4.0, 5.0}) {
		t.Fatalf("list = %#v", got)
	}
	if got := mustLoads(t, s, `{"test": 123}`); !reflect.DeepEqual(got, map[string]any{"test": 123.0}) {
		t.Fatalf("map = %#v", got)
	}
}

func TestRoundTripEmbeddedObjects(t *testing.T) {
	s := newTestSerializer(t, nil)
	registerNested(t, s)

	in := nested{First: strObj{S: "one"}, Second: dictObj{A: 2}}
	got := mustLoads(t, s, mustDumps(t, s, in))
	if got != in {
		t.Fatalf("got %#v, want %#v", got, in)
	}
}

func TestRoundTripDocumentInString(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })
	s := ResetDefault()
	registerNested(t, s)
	mustRegister[wrapper](t, s, "")

	in := wrapper{Inner: nested{First: strObj{S: "x"}, Second: dictObj{A: 9}}}
	b, err := Dumps(in)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Loads(b)
	if err != nil {
		t.Fatal(err)
	}
	if got != in {
		t.Fatalf("got %#v", got)
	}
}

func TestRoundTripUnresolvedStaysMap(t *testing.T) {
	s := newTestSerializer(t, nil)
	doc := `{"__obj_cls__": "some.not_existing.module", "__json_data__": "empty"}`
	got := mustLoads(t, s, doc)
	want := map[string]any{ObjectClassKey: "some.not_existing.module", DataKey: "empty"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
}

func TestRegisterFuncsNilPayload(t *testing.T) {
	s := newTestSerializer(t, nil)
	_, err := RegisterFuncs(s, "app.Counter",
		func(counter) (any, error) { return nil, nil },
		func(payload any, _ reflect.Type) (counter, error) {
			if payload != nil {
				return counter{}, errors.New("want nil payload")
			}
			return counter{N: 5}, nil
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	doc := mustDumps(t, s, counter{N: 5})
	jsonEqual(t, doc, map[string]any{ObjectClassKey: "app.Counter", DataKey: nil})
	if got := mustLoads(t, s, doc); got != (counter{N: 5}) {
		t.Fatalf("got %#v", got)
	}

	if _, err := RegisterFuncs(s, "app.Counter2",
		func(counter) (any, error) { return nil, nil },
		func(any, reflect.Type) (counter, error) { return counter{}, nil },
	); err == nil {
		t.Fatalf("second registration of the same type must fail")
	}
}

func TestRegisterFuncsPointerValues(t *testing.T) {
	s := newTestSerializer(t, nil)
	_, err := RegisterFuncs(s, "app.Counter",
		func(c counter) (any, error) { return c.N, nil },
		func(payload any, _ reflect.Type) (counter, error) {
			n, _ := toFloat(payload)
			return counter{N: int(n)}, nil
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	doc := mustDumps(t, s, &counter{N: 4})
	jsonEqual(t, doc, map[string]any{ObjectClassKey: "app.Counter", DataKey: 4})
}

func TestTimeRoundTrip(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	s := newTestSerializer(t, nil)
	cases := []time.Time{
		time.Date(2018, 10, 17, 14, 12, 55, 303671000, time.UTC),
		time.Date(2020, 2, 29, 23, 59, 59, 0, berlin),
		time.Date(2021, 6, 1, 8, 0, 0, 500000000, time.FixedZone("X+2", 7200)),
		time.Date(2019, 1, 1, 0, 0, 0, 0, time.Local),
	}
	for _, in := range cases {
		got, ok := mustLoads(t, s, mustDumps(t, s, in)).(time.Time)
		if !ok {
			t.Fatalf("%v did not decode to time.Time", in)
		}
		if !got.Equal(in) {
			t.Fatalf("got %v, want %v", got, in)
		}
		if got.Location().String() != in.Location().String() {
			t.Fatalf("zone %v, want %v", got.Location(), in.Location())
		}
		_, off := got.Zone()
		_, wantOff := in.Zone()
		if off != wantOff {
			t.Fatalf("offset %d, want %d", off, wantOff)
		}
	}
}

func TestTimeEnvelope(t *testing.T) {
	s := newTestSerializer(t, nil)
	in := time.Date(2018, 10, 17, 14, 12, 55, 303671000, time.UTC)
	jsonEqual(t, mustDumps(t, s, in), map[string]any{
		ObjectClassKey: TimePath,
		DataKey:        map[string]any{"epoch": 1539785575.303671, "tz": "UTC", "offset": 0},
	})

	got := mustLoads(t, s, `{"__obj_cls__": "time.Time", "__json_data__": {"timestamp": 1539785575.303671}}`)
	if tm, ok := got.(time.Time); !ok || !tm.Equal(in) || tm.Location() != time.Local {
		t.Fatalf("legacy timestamp payload decoded to %#v", got)
	}
}

func TestTimeBadPayload(t *testing.T) {
	s := newTestSerializer(t, nil)
	for _, doc := range []string{
		`{"__obj_cls__": "time.Time", "__json_data__": "yesterday"}`,
		`{"__obj_cls__": "time.Time", "__json_data__": {}}`,
		`{"__obj_cls__": "time.Time", "__json_data__": {"epoch": 1, "tz": "Nowhere/Unknown"}}`,
	} {
		var de *DecodeError
		if _, err := s.Loads([]byte(doc)); !errors.As(err, &de) || de.Path != TimePath {
			t.Fatalf("Loads(%s) err = %v", doc, err)
		}
	}
}

func TestDisableBuiltins(t *testing.T) {
	s, err := New(Options{DisableBuiltins: true})
	if err != nil {
		t.Fatal(err)
	}
	if s.Encoders().Len() != 0 || s.Decoders().Len() != 0 || s.Types().Len() != 1 {
		t.Fatalf("builtins registered: %d %d %d", s.Encoders().Len(), s.Decoders().Len(), s.Types().Len())
	}
	// time.Time then falls back to its own MarshalJSON
	b, err := s.Dumps(time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil || string(b) != `"2020-01-02T03:04:05Z"` {
		t.Fatalf("Dumps = %s, %v", b, err)
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	backends := []c.Codec[any]{
		c.JSON[any]{},
		c.JSON[any]{UseNumber: true},
		c.GoJSON[any]{},
		c.MustCBOR[any](true),
		c.Msgpack[any]{},
		c.Struct{},
	}
	in := map[string]any{
		"obj":  nested{First: strObj{S: "f"}, Second: dictObj{A: 11}},
		"when": time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC),
		"list": []any{"a", strObj{S: "b"}},
	}
	for _, b := range backends {
		s, err := New(Options{Backend: b})
		if err != nil {
			t.Fatal(err)
		}
		registerNested(t, s)
		name := Typed[any]{S: s}.Name()

		raw, err := s.Dumps(in)
		if err != nil {
			t.Fatalf("%s: Dumps: %v", name, err)
		}
		v, err := s.Loads(raw)
		if err != nil {
			t.Fatalf("%s: Loads: %v", name, err)
		}
		got := v.(map[string]any)
		if got["obj"] != in["obj"] {
			t.Fatalf("%s: obj = %#v", name, got["obj"])
		}
		if tm, ok := got["when"].(time.Time); !ok || !tm.Equal(in["when"].(time.Time)) {
			t.Fatalf("%s: when = %#v", name, got["when"])
		}
		if list := got["list"].([]any); list[0] != "a" || list[1] != (strObj{S: "b"}) {
			t.Fatalf("%s: list = %#v", name, list)
		}
	}
}

func TestDumpLoadStreams(t *testing.T) {
	s := newTestSerializer(t, nil)
	registerNested(t, s)
	var buf bytes.Buffer
	in := []any{strObj{S: "s"}, 1.0}
	if err := s.Dump(&buf, in); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(strings.NewReader(buf.String()))
	if err != nil || !reflect.DeepEqual(got, in) {
		t.Fatalf("Load = %#v, %v", got, err)
	}
}

func TestLoadsAs(t *testing.T) {
	s := newTestSerializer(t, nil)
	registerNested(t, s)
	doc := []byte(mustDumps(t, s, dictObj{A: 1}))

	got, err := LoadsAs[dictObj](s, doc)
	if err != nil || got != (dictObj{A: 1}) {
		t.Fatalf("LoadsAs = %#v, %v", got, err)
	}
	if _, err := LoadsAs[strObj](s, doc); err == nil {
		t.Fatalf("wrong target type must fail")
	}
	if p, err := LoadsAs[*dictObj](s, []byte(`null`)); err != nil || p != nil {
		t.Fatalf("null = %#v, %v", p, err)
	}
	if _, err := LoadsAs[any](s, []byte(`{`)); err == nil {
		t.Fatalf("malformed document must fail")
	}
}

func TestTypedCodec(t *testing.T) {
	s := newTestSerializer(t, nil)
	registerNested(t, s)
	var cd c.Codec[nested] = Typed[nested]{S: s}

	in := nested{First: strObj{S: "a"}, Second: dictObj{A: 5}}
	b, err := cd.Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	got, err := cd.Decode(b)
	if err != nil || got != in {
		t.Fatalf("Decode = %#v, %v", got, err)
	}
	if n := (Typed[nested]{S: s}).Name(); n != "json" {
		t.Fatalf("Name = %q", n)
	}
}

func TestDefaultHandle(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	mine := newTestSerializer(t, nil)
	SetDefault(mine)
	if Default() != mine {
		t.Fatalf("SetDefault not applied")
	}
	SetDefault(nil)
	if Default() != mine {
		t.Fatalf("SetDefault(nil) must be ignored")
	}
	fresh := ResetDefault()
	if fresh == mine || Default() != fresh {
		t.Fatalf("ResetDefault did not install a new serializer")
	}

	b, err := Dumps(map[string]any{"a": 1})
	if err != nil || string(b) != `{"a":1}` {
		t.Fatalf("Dumps = %s, %v", b, err)
	}
	var buf bytes.Buffer
	if err := Dump(&buf, []any{true}); err != nil {
		t.Fatal(err)
	}
	got, err := Load(&buf)
	if err != nil || !reflect.DeepEqual(got, []any{true}) {
		t.Fatalf("Load = %#v, %v", got, err)
	}
}
