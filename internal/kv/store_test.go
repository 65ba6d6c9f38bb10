package kv

import (
	"reflect"
	"testing"
)

func TestStoreAddRefusesOverwrite(t *testing.T) {
	s := New()
	if !s.Add("a", 1) {
		t.Fatalf("首次 Add 应成功")
	}
	if s.Add("a", 2) {
		t.Fatalf("重复 Add 应返回 false")
	}
	if v, _ := s.Get("a"); v != 1 {
		t.Fatalf("重复 Add 不应覆盖原值，得到 %v", v)
	}
}

func TestStoreSetRequiresExistingKey(t *testing.T) {
	s := New()
	if s.Set("missing", 1) {
		t.Fatalf("不存在的 key 不应 Set 成功")
	}
	s.Add("k", "v1")
	if !s.Set("k", "v2") {
		t.Fatalf("存在的 key 应 Set 成功")
	}
	if v, ok := s.Get("k"); !ok || v != "v2" {
		t.Fatalf("Set 后值不符: %v", v)
	}
}

func TestStorePreservesInsertionOrder(t *testing.T) {
	s := New()
	for _, k := range []string{"z", "a", "m", "b"} {
		s.Add(k, k)
	}
	s.Remove("a")
	s.Set("z", "zz")
	s.Add("a", "again")

	want := []string{"z", "m", "b", "a"}
	if got := s.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("顺序错误: %v", got)
	}
	if !s.Has("m") || s.Has("q") {
		t.Fatalf("Has 结果不符")
	}
	if s.Len() != 4 {
		t.Fatalf("Len 应为 4，得到 %d", s.Len())
	}
	if s.Remove("q") {
		t.Fatalf("删除不存在的 key 应返回 false")
	}
}

func TestStoreCloneIsIndependent(t *testing.T) {
	s := New()
	s.Add("a", 1)
	clone := s.Clone()
	clone.Add("b", 2)
	clone.Set("a", 3)

	if s.Has("b") {
		t.Fatalf("克隆体的修改不应影响原 Store")
	}
	if v, _ := s.Get("a"); v != 1 {
		t.Fatalf("原值被修改: %v", v)
	}
	if !reflect.DeepEqual(clone.ToMap(), map[string]any{"a": 3, "b": 2}) {
		t.Fatalf("克隆内容不符: %v", clone.ToMap())
	}
}

func TestStoreMarshalJSONOrdered(t *testing.T) {
	s := New()
	s.Add("b", "x")
	s.Add("a", int64(42))
	s.Add("c", 2.0)
	s.Add("d", true)
	s.Add("e", nil)

	out, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON 失败: %v", err)
	}
	want := `{"b":"x","a":42,"c":2.0,"d":true,"e":null}`
	if string(out) != want {
		t.Fatalf("JSON 不符:\n got %s\nwant %s", out, want)
	}
}
