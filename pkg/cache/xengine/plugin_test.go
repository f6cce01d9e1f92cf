package xengine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlugin_BeforeSetRewritesValue(t *testing.T) {
	upper := &Plugin{
		Name: "upper",
		BeforeSet: func(_ string, value any, _ *SetOptions) (any, error) {
			return strings.ToUpper(value.(string)), nil
		},
	}
	c, _ := newTestCache(t, WithPlugins(upper))

	require.NoError(t, c.Set("k", "hello"))
	v, _ := c.Get("k")
	assert.Equal(t, "HELLO", v)
}

func TestPlugin_BeforeSetChainOrder(t *testing.T) {
	appendSuffix := func(s string) *Plugin {
		return &Plugin{
			BeforeSet: func(_ string, value any, _ *SetOptions) (any, error) {
				return value.(string) + s, nil
			},
		}
	}
	c, _ := newTestCache(t, WithPlugins(appendSuffix("-a"), appendSuffix("-b")))

	require.NoError(t, c.Set("k", "v"))
	v, _ := c.Get("k")
	assert.Equal(t, "v-a-b", v, "钩子按注册顺序串联")
}

func TestPlugin_SetHooksNestPerPlugin(t *testing.T) {
	var order []string
	stage := func(name string) *Plugin {
		return &Plugin{
			Name: name,
			BeforeSet: func(_ string, value any, _ *SetOptions) (any, error) {
				order = append(order, name+".before")
				return value.(string) + "-" + name, nil
			},
			AfterSet: func(_ string, value any) {
				order = append(order, name+".after:"+value.(string))
			},
		}
	}
	c, _ := newTestCache(t, WithPlugins(stage("a"), stage("b")))

	require.NoError(t, c.Set("k", "v"))

	// 逐插件严格配对：a 的 AfterSet 先于 b 的 BeforeSet。
	assert.Equal(t, []string{"a.before", "a.after:v-a", "b.before", "b.after:v-a-b"}, order)

	v, _ := c.Get("k")
	assert.Equal(t, "v-a-b", v)
	assert.Equal(t, int64(1), c.Stats().Sets, "多阶段落库仍是一次逻辑写入")
}

func TestPlugin_AfterSetSeesOwnStageStored(t *testing.T) {
	var c *Cache
	var staged any
	first := &Plugin{
		BeforeSet: func(_ string, value any, _ *SetOptions) (any, error) {
			return value.(string) + "-1", nil
		},
		AfterSet: func(key string, _ any) { staged, _ = c.Peek(key) },
	}
	second := &Plugin{
		BeforeSet: func(_ string, value any, _ *SetOptions) (any, error) {
			return value.(string) + "-2", nil
		},
	}
	c, _ = newTestCache(t, WithPlugins(first, second))

	require.NoError(t, c.Set("k", "v"))
	assert.Equal(t, "v-1", staged, "AfterSet 触发时本插件改写的值已落库")

	v, _ := c.Get("k")
	assert.Equal(t, "v-1-2", v)
}

func TestPlugin_BeforeSetRejects(t *testing.T) {
	boom := errors.New("not allowed")
	veto := &Plugin{
		Name: "veto",
		BeforeSet: func(_ string, _ any, _ *SetOptions) (any, error) {
			return nil, boom
		},
	}
	c, _ := newTestCache(t, WithPlugins(veto))

	err := c.Set("k", "v")
	assert.ErrorIs(t, err, ErrRejectedByPlugin)
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Has("k"), "被拒绝的写入不发生任何变更")
	assert.Equal(t, int64(0), c.Stats().Sets)
}

func TestPlugin_AfterGetRewritesReturnOnly(t *testing.T) {
	mask := &Plugin{
		AfterGet: func(_ string, _ any) any { return "masked" },
	}
	c, _ := newTestCache(t, WithPlugins(mask))
	require.NoError(t, c.Set("k", "secret"))

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "masked", v)

	raw, _ := c.Peek("k")
	assert.Equal(t, "secret", raw, "AfterGet 不回写存储")
}

func TestPlugin_BeforeDeleteVeto(t *testing.T) {
	guard := &Plugin{
		BeforeDelete: func(key string) bool { return key != "protected" },
	}
	c, _ := newTestCache(t, WithPlugins(guard))
	require.NoError(t, c.Set("protected", 1))
	require.NoError(t, c.Set("normal", 2))

	assert.False(t, c.Delete("protected"))
	assert.True(t, c.Has("protected"))
	assert.True(t, c.Delete("normal"))
}

func TestPlugin_SerializeHooksInDump(t *testing.T) {
	codec := &Plugin{
		Name: "codec",
		BeforeSerialize: func(_ string, value any) (any, error) {
			return "enc:" + value.(string), nil
		},
		AfterDeserialize: func(_ string, value any) (any, error) {
			return strings.TrimPrefix(value.(string), "enc:"), nil
		},
	}
	src, _ := newTestCache(t, WithPlugins(codec))
	require.NoError(t, src.Set("k", "plain"))

	d, err := src.Dump()
	require.NoError(t, err)
	assert.Equal(t, "enc:plain", d.Entries[0].Value, "转储携带序列化后的值")

	dst, _ := newTestCache(t, WithPlugins(codec))
	_, err = dst.Restore(d)
	require.NoError(t, err)

	v, _ := dst.Get("k")
	assert.Equal(t, "plain", v, "还原经过反序列化钩子")
}

func TestPlugin_InitFailureAbortsNew(t *testing.T) {
	boom := errors.New("init failed")
	_, err := New(WithPlugins(&Plugin{
		OnInit: func(*Cache) error { return boom },
	}))
	assert.ErrorIs(t, err, boom)
}

func TestPlugin_OnDestroyCalled(t *testing.T) {
	destroyed := false
	c, err := New(WithPlugins(&Plugin{
		OnDestroy: func() { destroyed = true },
	}))
	require.NoError(t, err)

	require.NoError(t, c.Destroy())
	assert.True(t, destroyed)
}
