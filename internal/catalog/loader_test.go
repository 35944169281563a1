package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meur/buildforge/internal/validation"
)

const dataDragonSample = `{
  "type": "item",
  "version": "14.1.1",
  "basic": {"name": "", "from": [], "into": []},
  "data": {
    "3078": {
      "name": "Trinity Force",
      "from": ["3057", "3051", "1011"],
      "gold": {"base": 333, "total": 3333, "sell": 2333, "purchasable": true},
      "image": {"full": "3078.png"},
      "tags": ["Damage", "AttackSpeed"],
      "maps": {"11": true, "12": true, "30": false}
    },
    "1011": {
      "name": "Giant's Belt",
      "into": ["3078", "3083"],
      "gold": {"total": 900},
      "image": {"full": "1011.png"},
      "tags": ["Health"],
      "maps": {"11": true}
    }
  }
}`

func TestParse(t *testing.T) {
	t.Run("data dragon layout", func(t *testing.T) {
		f, err := Parse([]byte(dataDragonSample))
		require.NoError(t, err)

		assert.Equal(t, "14.1.1", f.Version)
		require.Len(t, f.Items, 2)

		belt := f.Items[0]
		assert.Equal(t, 1011, belt.ID)
		assert.Equal(t, "Giant's Belt", belt.Name)
		assert.Equal(t, []int{3078, 3083}, belt.To)
		assert.Empty(t, belt.From)
		assert.Equal(t, 900, belt.Price)
		assert.Equal(t, "1011.png", belt.Icon)
		assert.Equal(t, []int{11}, belt.Maps)

		tf := f.Items[1]
		assert.Equal(t, 3078, tf.ID)
		assert.Equal(t, []int{3057, 3051, 1011}, tf.From)
		assert.Equal(t, 3333, tf.Price)
		assert.Equal(t, []int{11, 12}, tf.Maps)
		assert.Equal(t, []string{"Damage", "AttackSpeed"}, tf.Tags)
	})

	t.Run("flat map with integer ids", func(t *testing.T) {
		f, err := Parse([]byte(`{
			"100": {"name": "Loop", "from": [100], "to": [100], "price": 5, "icon": "loop.png"}
		}`))
		require.NoError(t, err)

		require.Len(t, f.Items, 1)
		assert.Equal(t, []int{100}, f.Items[0].From)
		assert.Equal(t, []int{100}, f.Items[0].To)
		assert.Equal(t, 5, f.Items[0].Price)
		assert.Equal(t, "loop.png", f.Items[0].Icon)
	})

	t.Run("maps disabled everywhere differ from missing maps", func(t *testing.T) {
		f, err := Parse([]byte(`{"data": {
			"1001": {"name": "Boots", "maps": {"11": false, "12": false}},
			"2003": {"name": "Health Potion"}
		}}`))
		require.NoError(t, err)
		require.Len(t, f.Items, 2)

		boots, potion := f.Items[0], f.Items[1]
		assert.NotNil(t, boots.Maps)
		assert.Empty(t, boots.Maps)
		assert.Nil(t, potion.Maps)

		cat := New(f.Items)
		got := cat.Filter(nil, 11)
		require.Len(t, got, 1)
		assert.Equal(t, 2003, got[0].ID)
	})

	t.Run("schema violations are reported per field", func(t *testing.T) {
		_, err := Parse([]byte(`{"data": {"3078": {"from": ["abc"]}}}`))
		require.Error(t, err)

		var fieldErrs validation.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.NotEmpty(t, fieldErrs)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := Parse([]byte(`{nope`))
		assert.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item.json")
	require.NoError(t, os.WriteFile(path, []byte(dataDragonSample), 0600))

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Items, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read catalog")
}
