package xtag

import "sort"

// Index 是键↔标签的双向多值索引。
// 零值不可用，必须通过 New 创建。
type Index struct {
	tagToKeys map[string]map[string]struct{}
	keyToTags map[string]map[string]struct{}
}

// New 创建空索引。
func New() *Index {
	return &Index{
		tagToKeys: make(map[string]map[string]struct{}),
		keyToTags: make(map[string]map[string]struct{}),
	}
}

// Set 替换 key 的全部标签：先清除旧关联，再建立新关联。
// tags 为空时等价于 RemoveKey。
func (i *Index) Set(key string, tags []string) {
	i.RemoveKey(key)
	i.Add(key, tags)
}

// Add 为 key 增量添加标签，自动去重。
func (i *Index) Add(key string, tags []string) {
	if len(tags) == 0 {
		return
	}
	keyTags := i.keyToTags[key]
	if keyTags == nil {
		keyTags = make(map[string]struct{}, len(tags))
		i.keyToTags[key] = keyTags
	}
	for _, t := range tags {
		keyTags[t] = struct{}{}
		bucket := i.tagToKeys[t]
		if bucket == nil {
			bucket = make(map[string]struct{})
			i.tagToKeys[t] = bucket
		}
		bucket[key] = struct{}{}
	}
}

// Remove 为 key 增量移除标签。
func (i *Index) Remove(key string, tags []string) {
	keyTags, ok := i.keyToTags[key]
	if !ok {
		return
	}
	for _, t := range tags {
		delete(keyTags, t)
		i.dropKeyFromTag(t, key)
	}
	if len(keyTags) == 0 {
		delete(i.keyToTags, key)
	}
}

// RemoveKey 清除 key 的全部标签关联，用于删除与清空。
func (i *Index) RemoveKey(key string) {
	keyTags, ok := i.keyToTags[key]
	if !ok {
		return
	}
	for t := range keyTags {
		i.dropKeyFromTag(t, key)
	}
	delete(i.keyToTags, key)
}

// Keys 返回携带指定标签的全部键，按键名升序。
func (i *Index) Keys(tag string) []string {
	return sortedKeys(i.tagToKeys[tag])
}

// KeysWithAll 返回同时携带全部给定标签的键（交集），按键名升序。
// 空输入返回空集；任一标签未知时立即短路返回空集。
func (i *Index) KeysWithAll(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	result := i.tagToKeys[tags[0]]
	if len(result) == 0 {
		return nil
	}
	current := make(map[string]struct{}, len(result))
	for k := range result {
		current[k] = struct{}{}
	}
	for _, t := range tags[1:] {
		bucket, ok := i.tagToKeys[t]
		if !ok {
			return nil
		}
		for k := range current {
			if _, ok := bucket[k]; !ok {
				delete(current, k)
			}
		}
		if len(current) == 0 {
			return nil
		}
	}
	return sortedKeys(current)
}

// KeysWithAny 返回携带任一给定标签的键（并集），按键名升序。
func (i *Index) KeysWithAny(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	union := make(map[string]struct{})
	for _, t := range tags {
		for k := range i.tagToKeys[t] {
			union[k] = struct{}{}
		}
	}
	return sortedKeys(union)
}

// Tags 返回 key 当前的全部标签，按字典序升序。
func (i *Index) Tags(key string) []string {
	return sortedKeys(i.keyToTags[key])
}

// AllTags 枚举全部已知标签，按字典序升序。
func (i *Index) AllTags() []string {
	return sortedKeys(i.tagToKeys)
}

// Len 返回当前持有标签的键数量。
func (i *Index) Len() int {
	return len(i.keyToTags)
}

// Clear 清空整个索引。
func (i *Index) Clear() {
	i.tagToKeys = make(map[string]map[string]struct{})
	i.keyToTags = make(map[string]map[string]struct{})
}

// dropKeyFromTag 从标签桶移除键，桶空时删除整个桶。
func (i *Index) dropKeyFromTag(tag, key string) {
	bucket, ok := i.tagToKeys[tag]
	if !ok {
		return
	}
	delete(bucket, key)
	if len(bucket) == 0 {
		delete(i.tagToKeys, tag)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
