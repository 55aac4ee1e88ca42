package serializer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/fcmpush/pkg/serializer"
)

type child struct {
	Name string
}

func (c *child) Fields() []serializer.Field {
	return []serializer.Field{serializer.F("name", c.Name)}
}

type parent struct {
	Title    string
	Count    int
	Silent   bool
	Child    *child
	Children []*child
	Tags     []string
}

func (p *parent) Fields() []serializer.Field {
	return []serializer.Field{
		serializer.F("title", p.Title),
		serializer.F("count", p.Count),
		serializer.F("silent", p.Silent),
		serializer.F("child", p.Child),
		serializer.F("children", p.Children),
		serializer.F("tags", p.Tags),
	}
}

func TestToMap(t *testing.T) {
	t.Run("ignore nulls", func(t *testing.T) {
		p := &parent{Title: "hello"}
		out := serializer.ToMap(p, true)
		assert.Equal(t, map[string]interface{}{
			"title":  "hello",
			"silent": false,
		}, out)
	})

	t.Run("keep nulls", func(t *testing.T) {
		p := &parent{Title: "hello"}
		out := serializer.ToMap(p, false)
		assert.Len(t, out, 6)
		assert.Nil(t, out["child"])
		assert.Equal(t, 0, out["count"])
	})

	t.Run("nested", func(t *testing.T) {
		p := &parent{
			Child:    &child{Name: "a"},
			Children: []*child{{Name: "b"}, {Name: "c"}},
			Tags:     []string{"x"},
		}

		out := serializer.ToMap(p, true)
		assert.Equal(t, map[string]interface{}{"name": "a"}, out["child"])
		assert.Equal(t, []interface{}{
			map[string]interface{}{"name": "b"},
			map[string]interface{}{"name": "c"},
		}, out["children"])
		assert.Equal(t, []string{"x"}, out["tags"])
	})

	t.Run("source untouched", func(t *testing.T) {
		p := &parent{Child: &child{Name: "a"}}
		out := serializer.ToMap(p, true)
		out["child"].(map[string]interface{})["name"] = "changed"
		assert.Equal(t, "a", p.Child.Name)
	})

	t.Run("nil projector", func(t *testing.T) {
		var p *parent
		assert.Nil(t, serializer.ToMap(p, true))
	})
}

func TestMarshal(t *testing.T) {
	b, err := serializer.Marshal(&parent{Title: "t", Count: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"t","count":2,"silent":false}`, string(b))
}
