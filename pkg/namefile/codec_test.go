package namefile_test

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/namefile/pkg/namefile"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEncode(t *testing.T) {
	testcases := []struct {
		name string
		stem string
		opts []namefile.Option
		want string
	}{
		{
			name: "all fields",
			stem: "foo",
			opts: []namefile.Option{
				namefile.WithSuffix("txt"),
				namefile.WithTags("bar", "baz"),
				namefile.WithDate(date(2020, 1, 1)),
				namefile.WithVersion("1.0.0"),
			},
			want: "foo-bar-baz.20200101.1.0.0.txt",
		},
		{
			name: "tags sorted",
			stem: "foo",
			opts: []namefile.Option{namefile.WithSuffix("txt"), namefile.WithTags("baz", "bar", "baz")},
			want: "foo-bar-baz.txt",
		},
		{
			name: "hyphen in stem",
			stem: "glue-cola",
			opts: []namefile.Option{namefile.WithSuffix("txt"), namefile.WithTags("x")},
			want: "glue_cola-x.txt",
		},
		{
			name: "reserved characters in stem and tags",
			stem: "a.b/c d",
			opts: []namefile.Option{namefile.WithTags("new-tag")},
			want: "a_b_c_d-new_tag",
		},
		{
			name: "leading dot in suffix",
			stem: "foo",
			opts: []namefile.Option{namefile.WithSuffix(".md")},
			want: "foo.md",
		},
		{
			name: "no suffix",
			stem: "build",
			opts: []namefile.Option{namefile.WithVersion("2.0")},
			want: "build.2.0",
		},
		{
			name: "post release with date",
			stem: "foo",
			opts: []namefile.Option{
				namefile.WithSuffix("txt"),
				namefile.WithDate(date(2021, 12, 31)),
				namefile.WithVersion("1.2.0.post1"),
			},
			want: "foo.20211231.1.2.0.post1.txt",
		},
		{
			name: "pre-release normalized",
			stem: "foo",
			opts: []namefile.Option{namefile.WithSuffix("whl"), namefile.WithVersion("v1.0.rc1")},
			want: "foo.1.0rc1.whl",
		},
		{
			name: "compound suffix",
			stem: "backup",
			opts: []namefile.Option{namefile.WithSuffix("tar.gz"), namefile.WithDate(date(2023, 5, 6))},
			want: "backup.20230506.tar.gz",
		},
		{
			name: "date keeps calendar day only",
			stem: "log",
			opts: []namefile.Option{namefile.WithDate(time.Date(2022, 2, 3, 23, 59, 0, 0, time.UTC))},
			want: "log.20220203",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := namefile.New(tc.stem, tc.opts...)
			require.NoError(t, err)

			got, err := namefile.Encode(r)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want, r.String())
		})
	}
}

func TestEncode_ZeroRecord(t *testing.T) {
	_, err := namefile.Encode(namefile.Record{})
	assert.ErrorIs(t, err, namefile.ErrInvalidRecord)
	assert.Empty(t, namefile.Record{}.String())
}

func TestEncode_TagOrderIndependent(t *testing.T) {
	a, err := namefile.Name("foo", namefile.WithTags("bar", "baz"))
	require.NoError(t, err)
	b, err := namefile.Name("foo", namefile.WithTags("baz", "bar"))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	ra, err := namefile.Decode(a)
	require.NoError(t, err)
	rb, err := namefile.Decode(b)
	require.NoError(t, err)
	assert.True(t, ra.Tags().Equal(rb.Tags()))
}

func TestNew_Invalid(t *testing.T) {
	testcases := []struct {
		name string
		stem string
		opts []namefile.Option
	}{
		{name: "empty stem", stem: ""},
		{name: "empty tag", stem: "foo", opts: []namefile.Option{namefile.WithTags("ok", "")}},
		{name: "numeric suffix", stem: "foo", opts: []namefile.Option{namefile.WithSuffix("1")}},
		{name: "date suffix", stem: "foo", opts: []namefile.Option{namefile.WithSuffix("20200101")}},
		{name: "qualifier suffix", stem: "foo", opts: []namefile.Option{namefile.WithSuffix("post1")}},
		{name: "unknown compound suffix", stem: "foo", opts: []namefile.Option{namefile.WithSuffix("pkg.json")}},
		{name: "hyphenated suffix", stem: "foo", opts: []namefile.Option{namefile.WithSuffix("tar-gz")}},
		{name: "malformed version", stem: "foo", opts: []namefile.Option{namefile.WithVersion("one.two")}},
		{name: "version collides with date", stem: "foo", opts: []namefile.Option{namefile.WithVersion("20200101.1")}},
		{name: "year out of range", stem: "foo", opts: []namefile.Option{namefile.WithDate(date(10000, 1, 1))}},
		{name: "invalid utf8 stem", stem: "fo\xffo"},
		{name: "invalid utf8 tag", stem: "foo", opts: []namefile.Option{namefile.WithTags("ok", "\xfe")}},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := namefile.New(tc.stem, tc.opts...)
			assert.ErrorIs(t, err, namefile.ErrInvalidRecord)
		})
	}
}

func TestNew_MalformedVersionIsAlsoInvalidVersion(t *testing.T) {
	_, err := namefile.New("foo", namefile.WithVersion("1..2"))
	assert.ErrorIs(t, err, namefile.ErrInvalidRecord)
	assert.ErrorIs(t, err, namefile.ErrInvalidVersion)
}

func TestDecode(t *testing.T) {
	testcases := []struct {
		input string
		want  namefile.Fields
	}{
		{
			input: "foo-bar-baz.20200101.1.0.0.txt",
			want:  namefile.Fields{Stem: "foo", Suffix: "txt", Tags: []string{"bar", "baz"}, Date: "2020-01-01", Version: "1.0.0"},
		},
		{
			input: "foo-bar-baz.txt",
			want:  namefile.Fields{Stem: "foo", Suffix: "txt", Tags: []string{"bar", "baz"}},
		},
		{
			input: "foo-baz-bar-baz.txt",
			want:  namefile.Fields{Stem: "foo", Suffix: "txt", Tags: []string{"bar", "baz"}},
		},
		{
			input: "foo",
			want:  namefile.Fields{Stem: "foo", Tags: []string{}},
		},
		{
			input: "foo.20200101",
			want:  namefile.Fields{Stem: "foo", Tags: []string{}, Date: "2020-01-01"},
		},
		{
			input: "foo.1.0",
			want:  namefile.Fields{Stem: "foo", Tags: []string{}, Version: "1.0"},
		},
		{
			input: "foo.20200101.1.2.0.post1.txt",
			want:  namefile.Fields{Stem: "foo", Suffix: "txt", Tags: []string{}, Date: "2020-01-01", Version: "1.2.0.post1"},
		},
		{
			input: "foo.v2.mp4",
			want:  namefile.Fields{Stem: "foo", Suffix: "mp4", Tags: []string{}, Version: "2"},
		},
		{
			input: "foo.1.0.rc2.txt",
			want:  namefile.Fields{Stem: "foo", Suffix: "txt", Tags: []string{}, Version: "1.0rc2"},
		},
		{
			input: "foo.1.0.post.txt",
			want:  namefile.Fields{Stem: "foo", Suffix: "txt", Tags: []string{}, Version: "1.0.post0"},
		},
		{
			input: "archive-db.20230101.tar.gz",
			want:  namefile.Fields{Stem: "archive", Suffix: "tar.gz", Tags: []string{"db"}, Date: "2023-01-01"},
		},
		{
			input: "20200101.txt",
			want:  namefile.Fields{Stem: "20200101", Suffix: "txt", Tags: []string{}},
		},
		{
			input: "foo.1.20200101.txt",
			want:  namefile.Fields{Stem: "foo", Suffix: "txt", Tags: []string{}, Version: "1.20200101"},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.input, func(t *testing.T) {
			r, err := namefile.Decode(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, r.Fields())
		})
	}
}

func TestDecode_DateBeforeVersion(t *testing.T) {
	r, err := namefile.Decode("foo-bar-baz.20200101.1.0.0.txt")
	require.NoError(t, err)

	d, ok := r.Date()
	require.True(t, ok)
	assert.Equal(t, date(2020, 1, 1), d)

	v, ok := r.Version()
	require.True(t, ok)
	assert.Equal(t, []int{1, 0, 0}, v.Release())
	_, _, qualified := v.Qualifier()
	assert.False(t, qualified)

	assert.Equal(t, "foo", r.Stem())
	assert.Equal(t, "txt", r.Suffix())
	assert.True(t, r.Tags().Equal(namefile.NewTagSet("baz", "bar")))
}

func TestDecode_Errors(t *testing.T) {
	testcases := []struct {
		input string
		want  error
	}{
		{input: "", want: namefile.ErrUnparseableName},
		{input: "foo.randomtoken.txt", want: namefile.ErrUnparseableName},
		{input: "foo.txt.gz", want: namefile.ErrUnparseableName},
		{input: "foo..txt", want: namefile.ErrUnparseableName},
		{input: "foo.", want: namefile.ErrUnparseableName},
		{input: ".bashrc", want: namefile.ErrUnparseableName},
		{input: "-foo.txt", want: namefile.ErrUnparseableName},
		{input: "foo--bar.txt", want: namefile.ErrUnparseableName},
		{input: "foo bar.txt", want: namefile.ErrUnparseableName},
		{input: "foo.1.0.my-ext", want: namefile.ErrUnparseableName},
		{input: "foo.20201332.txt", want: namefile.ErrInvalidDate},
		{input: "foo.20200230.1.0.txt", want: namefile.ErrInvalidDate},
		{input: "foo.00000101.txt", want: namefile.ErrInvalidDate},
		{input: "\xff-tag.txt", want: namefile.ErrUnparseableName},
		{input: "foo-t\xffg.txt", want: namefile.ErrUnparseableName},
		{input: "foo.post1.txt", want: namefile.ErrInvalidVersion},
		{input: "foo.1.post1.2.txt", want: namefile.ErrInvalidVersion},
		{input: "foo.1.v2.txt", want: namefile.ErrInvalidVersion},
		{input: "foo.b", want: namefile.ErrInvalidVersion},
		{input: "foo.20200101.20200101.txt", want: namefile.ErrInvalidVersion},
	}

	for _, tc := range testcases {
		t.Run(tc.input, func(t *testing.T) {
			_, err := namefile.Decode(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecode_YearZeroIsInvalidDate(t *testing.T) {
	_, err := namefile.Decode("foo.00000101.txt")
	assert.Equal(t, namefile.KindInvalidDate, namefile.ErrorKind(err))
}

func TestDecode_InvalidDateNotReclassified(t *testing.T) {
	_, err := namefile.Decode("foo.20201332.txt")
	assert.ErrorIs(t, err, namefile.ErrInvalidDate)
	assert.NotErrorIs(t, err, namefile.ErrInvalidVersion)
	assert.NotErrorIs(t, err, namefile.ErrUnparseableName)
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pick := func(items []string) string { return items[rng.Intn(len(items))] }

	stemChars := []string{"a", "b", "z", "Q", "0", "7", "_", "-", " ", ".", "é"}
	word := func() string {
		var b strings.Builder
		for n := 1 + rng.Intn(8); n > 0; n-- {
			b.WriteString(pick(stemChars))
		}
		return b.String()
	}
	versions := []string{"", "1.0.0", "2.0", "1.0.1.post1", "v3.1rc2", "0.9.dev3", "1.0b1", "10", "1.2.3.4", "0a0"}
	suffixes := []string{"", "txt", "tar.gz", "mp4", "JPG", "7z", "h264", "tar.zst"}

	for i := 0; i < 500; i++ {
		opts := []namefile.Option{namefile.WithSuffix(pick(suffixes))}
		for n := rng.Intn(4); n > 0; n-- {
			opts = append(opts, namefile.WithTags(word()))
		}
		if rng.Intn(2) == 0 {
			opts = append(opts, namefile.WithDate(date(1990+rng.Intn(150), time.Month(1+rng.Intn(12)), 1+rng.Intn(28))))
		}
		if v := pick(versions); v != "" {
			opts = append(opts, namefile.WithVersion(v))
		}

		r, err := namefile.New(word(), opts...)
		require.NoError(t, err)

		name, err := namefile.Encode(r)
		require.NoError(t, err)
		again, err := namefile.Encode(r)
		require.NoError(t, err)
		require.Equal(t, name, again, "encode must be stable")

		decoded, err := namefile.Decode(name)
		require.NoError(t, err, name)
		require.True(t, decoded.Equal(r), "round trip of %q: got %+v, want %+v", name, decoded.Fields(), r.Fields())
	}
}

func TestWithToday(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 3, 5, 15, 4, 5, 0, time.UTC))

	r, err := namefile.New("log", namefile.WithClock(mock), namefile.WithToday(), namefile.WithSuffix("txt"))
	require.NoError(t, err)
	assert.Equal(t, "log.20240305.txt", r.String())

	mock.Add(48 * time.Hour)
	d, _ := r.Date()
	assert.Equal(t, date(2024, 3, 5), d, "date is resolved once at construction")
}

func TestDerive(t *testing.T) {
	base, err := namefile.New("report", namefile.WithSuffix("pdf"), namefile.WithTags("draft"), namefile.WithVersion("1.0"))
	require.NoError(t, err)

	next, err := base.Derive(namefile.WithVersion("1.1"), namefile.WithTags("final"), namefile.WithDate(date(2024, 1, 2)))
	require.NoError(t, err)
	assert.Equal(t, "report-draft-final.20240102.1.1.pdf", next.String())
	assert.Equal(t, "report-draft.1.0.pdf", base.String(), "base record is unchanged")

	bare, err := next.Derive(namefile.WithoutTags(), namefile.WithoutDate(), namefile.WithoutVersion(), namefile.WithSuffix(""))
	require.NoError(t, err)
	assert.Equal(t, "report", bare.String())
	assert.True(t, bare.IsDir())
}

func TestFields_Record(t *testing.T) {
	f := namefile.Fields{Stem: "foo", Suffix: "txt", Tags: []string{"b", "a"}, Date: "2020-01-01", Version: "1.0.0"}
	r, err := f.Record()
	require.NoError(t, err)
	assert.Equal(t, "foo-a-b.20200101.1.0.0.txt", r.String())

	_, err = namefile.Fields{Stem: "foo", Date: "2020-13-01"}.Record()
	assert.ErrorIs(t, err, namefile.ErrInvalidRecord)
	assert.ErrorIs(t, err, namefile.ErrInvalidDate)
}

func TestRecord_TextMarshaling(t *testing.T) {
	var r namefile.Record
	require.NoError(t, r.UnmarshalText([]byte("foo-bar.1.0.txt")))

	text, err := r.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "foo-bar.1.0.txt", string(text))

	assert.ErrorIs(t, r.UnmarshalText([]byte("foo.bad.txt")), namefile.ErrUnparseableName)
}
