package ptrpack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ptrpack/internal/format"
	"github.com/joshuapare/ptrpack/internal/writer"
	"github.com/joshuapare/ptrpack/table/emit"
	"github.com/joshuapare/ptrpack/table/record"
)

// fixture has two source regions, [0x1000,0x100c) and [0x2000,0x2008), and
// one duplicate pointer to the string at 0x1000.
func fixture(last string) *record.Set {
	s := record.NewSet("t")
	s.Add(0x100, 0x1000, []byte("AAAAAA"), "Hi")
	s.Add(0x104, 0x1008, []byte("BB"), "No")
	s.Add(0x108, 0x1000, []byte("AAAAAA"), "Hi")
	s.Add(0x10c, 0x2000, []byte("CC"), "Ok")
	s.Add(0x110, 0x2004, []byte("DD"), last)
	return s
}

func names(arts []emit.Artifact) []string {
	out := make([]string, len(arts))
	for i, a := range arts {
		out[i] = a.Name
	}
	return out
}

func TestBuild_Fits(t *testing.T) {
	res, err := Build(fixture(""), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"t_0x100_0x114.bin",
		"t_0x1000_0x100c.bin",
		"t_0x2000_0x2008.bin",
	}, names(res.Artifacts))

	assert.Equal(t, []byte{
		0x00, 0x10, 0, 0,
		0x04, 0x10, 0, 0,
		0x04, 0x10, 0, 0, // duplicate takes the cursor
		0x00, 0x20, 0, 0, // exact fit at 0x100c moved to the next block
		0x04, 0x20, 0, 0, // placeholder takes the cursor
	}, res.Artifacts[0].Data)

	assert.Equal(t, []byte("Hi\x00\x00No\x00\x00\x00\x00\x00\x00"), res.Artifacts[1].Data)
	assert.Equal(t, []byte("Ok\x00\x00\x00\x00\x00\x00"), res.Artifacts[2].Data)
	assert.Empty(t, res.Diagnostics)
}

func TestBuild_CanonicalDuplicates(t *testing.T) {
	opts := DefaultOptions()
	opts.CanonicalDuplicates = true

	res, err := Build(fixture(""), opts)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1000), format.ReadU32(res.Artifacts[0].Data, 8))
	assert.Equal(t, uint32(0x1004), format.ReadU32(res.Artifacts[0].Data, 4))
}

// TestBuild_EmptyRecordInsideString accepts a block whose end comes from an
// empty record sitting inside a longer original string.
func TestBuild_EmptyRecordInsideString(t *testing.T) {
	s := record.NewSet("t")
	s.Add(0x100, 0x1000, make([]byte, 14), "Hi")
	s.Add(0x104, 0x1004, nil, "")

	res, err := Build(s, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"t_0x100_0x108.bin", "t_0x1000_0x1004.bin", "t_0x0_0x4.bin"}, names(res.Artifacts))
	assert.Equal(t, []byte("Hi\x00\x00"), res.Artifacts[2].Data)
}

func TestBuild_SpillsToOverflow(t *testing.T) {
	opts := DefaultOptions()
	opts.OverflowBase = 0x80000

	res, err := Build(fixture("Go"), opts)
	require.NoError(t, err)

	require.Len(t, res.Artifacts, 4)
	ov := res.Artifacts[3]
	assert.Equal(t, "t_0x80000_0x80004.bin", ov.Name)
	assert.Equal(t, []byte("Go\x00\x00"), ov.Data)
	assert.Equal(t, uint32(0x80000), format.ReadU32(res.Artifacts[0].Data, 16))

	st := res.Stats()
	assert.True(t, st.OverflowUsed())
	assert.Equal(t, 1, st.Spilled)
}

func TestBuild_StrictOverflow(t *testing.T) {
	opts := DefaultOptions()
	opts.StrictOverflow = true

	_, err := Build(fixture("Go"), opts)
	require.ErrorIs(t, err, format.ErrPackingOverflow)

	var re *format.RecordError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, uint32(0x110), re.Pointer)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		set  func() *record.Set
		want error
	}{
		{"empty", func() *record.Set { return record.NewSet("e") }, format.ErrEmptyTable},
		{"odd source", func() *record.Set {
			s := record.NewSet("t")
			s.Add(0, 0x10, []byte("ABC"), "x")
			return s
		}, format.ErrOddSourceLength},
		{"non ascii", func() *record.Set {
			s := record.NewSet("t")
			s.Add(0, 0x10, []byte("AB"), "café")
			return s
		}, format.ErrEncoding},
		{"too long for next block", func() *record.Set {
			s := record.NewSet("t")
			s.Add(0, 0x10, []byte("AB"), "much too long")
			s.Add(4, 0x100, []byte("AB"), "")
			return s
		}, format.ErrPackingOverflow},
		{"shared slot", func() *record.Set {
			s := record.NewSet("t")
			s.Add(0, 0x10, []byte("AB"), "")
			s.Add(0, 0x14, []byte("CD"), "")
			return s
		}, format.ErrDuplicatePointer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.set(), nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuild_Idempotent(t *testing.T) {
	set := fixture("Go")
	first, err := Build(set, nil)
	require.NoError(t, err)
	firstArts := append([]emit.Artifact(nil), first.Artifacts...)

	second, err := Build(set, nil)
	require.NoError(t, err)
	assert.Equal(t, firstArts, second.Artifacts)
}

func TestBuild_Diagnostics(t *testing.T) {
	s := record.NewSet("t")
	// " B" sits at index 1, so it stays literal.
	s.Add(0, 0x10, []byte("AAAAAAAAAA"), "A Bc")
	res, err := Build(s, nil)
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, uint32(0x10), res.Diagnostics[0].Source)
}

func TestResult_Write(t *testing.T) {
	res, err := Build(fixture(""), nil)
	require.NoError(t, err)

	var mem writer.MemWriter
	require.NoError(t, res.Write(&mem))
	assert.Equal(t, names(res.Artifacts), mem.Order)
	for _, a := range res.Artifacts {
		assert.Equal(t, a.Data, mem.Files[a.Name])
	}
}

func TestResult_WriteDirAndCompare(t *testing.T) {
	dir := t.TempDir()
	res, err := Build(fixture(""), nil)
	require.NoError(t, err)
	require.NoError(t, res.WriteDir(dir, true))

	assert.Empty(t, res.CompareDir(dir))

	p := filepath.Join(dir, res.Artifacts[1].Name)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	data[0] ^= 0xff
	require.NoError(t, os.WriteFile(p, data, 0o644))
	require.NoError(t, os.Remove(filepath.Join(dir, res.Artifacts[2].Name)))

	assert.Len(t, res.CompareDir(dir), 2)
}

func TestBuildFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "menu.tsv")
	body := "jp_pointer\tjp_address\tjp_string\ten_text\n" +
		"0x0\t0x40\t82a082a282a4\tYes\n" +
		"0x4\t0x48\t82a8\tNo\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	res, err := BuildFile(p, nil)
	require.NoError(t, err)
	assert.Equal(t, "menu_0x0_0x8.bin", res.Artifacts[0].Name)
}

func TestStats(t *testing.T) {
	res, err := Build(fixture(""), nil)
	require.NoError(t, err)

	st := res.Stats()
	assert.Equal(t, "t", st.Table)
	assert.Equal(t, 5, st.Records)
	assert.Equal(t, 1, st.Duplicates)
	assert.Equal(t, 1, st.Placeholders)
	assert.Equal(t, uint64(8+4+4+4), st.SourceBytes)
	assert.Equal(t, uint64(12), st.ReplacementBytes)
	assert.False(t, st.OverflowUsed())

	require.Len(t, st.Blocks, 3)
	assert.Equal(t, BlockStats{ID: 0, Start: 0x1000, End: 0x100c, Capacity: 12, Used: 8, Records: 2}, st.Blocks[0])
	assert.Equal(t, uint32(4), st.Blocks[0].Slack())
	assert.Equal(t, uint32(4), st.Blocks[1].Used)
	assert.Equal(t, 1, st.Blocks[1].Records)
	assert.Equal(t, 0, st.Spilled)
}
