//go:build cgo

package source

import (
	"context"
	"reflect"
	"testing"

	"domkey/internal/domtree"
)

const samplePanel = `<template>
  <div id="root">
    <section id="A" draggable="true">
      <p id="a1" draggable="true">one</p>
      <p id="a2" draggable="true">two</p>
    </section>
    <section id="B">
      <span data-key="b1">three</span>
    </section>
  </div>
</template>`

func TestParseHTML(t *testing.T) {
	tree, err := ParseHTML(context.Background(), []byte(samplePanel), DefaultOptions())
	if err != nil {
		t.Fatalf("ParseHTML() error = %v", err)
	}

	want := []string{"template:0", "root", "A", "a1", "a2", "B", "template:0>div:0>section:1>span:0"}
	if got := visitIDs(tree); !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v\nwant %v", got, want)
	}

	a := tree.Roots[0].Children[0].Children[0]
	if a.Tag != "section" || a.Kind != domtree.KindNode {
		t.Errorf("A = tag %q kind %v, want section node", a.Tag, a.Kind)
	}
	if a.Children[0].Kind != domtree.KindElement {
		t.Errorf("a1 kind = %v, want element", a.Children[0].Kind)
	}
}

func TestParseHTMLIDAttribute(t *testing.T) {
	opts := DefaultOptions()
	opts.IDAttribute = "data-key"

	tree, err := ParseHTML(context.Background(), []byte(samplePanel), opts)
	if err != nil {
		t.Fatalf("ParseHTML() error = %v", err)
	}

	ids := visitIDs(tree)
	if ids[len(ids)-1] != "b1" {
		t.Errorf("last id = %q, want b1", ids[len(ids)-1])
	}
}

func TestParseHTMLText(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipText = false

	tree, err := ParseHTML(context.Background(), []byte(`<ul id="list"><li id="x">hi</li></ul>`), opts)
	if err != nil {
		t.Fatalf("ParseHTML() error = %v", err)
	}

	want := []string{"list", "x", "ul:0>li:0>#text:0"}
	if got := visitIDs(tree); !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
}
