package sppfcpg

import "fmt"

func Example_buildAndOpen() {
	b := NewBuilder()
	root, err := b.WriteSymbolNode(1, 100, 0, 11, nil, []PropertyDescriptor{
		{Key: "Value", Kind: KindString, Value: "hello world"},
	})
	if err != nil {
		panic(err)
	}
	image, err := b.Build(root, "hello world", nil)
	if err != nil {
		panic(err)
	}

	g, err := Open(image)
	if err != nil {
		panic(err)
	}
	defer g.Close()

	n, err := g.Root()
	if err != nil {
		panic(err)
	}
	v, _, err := n.TryProperty("Value")
	if err != nil {
		panic(err)
	}
	s, _ := v.AsString()
	fmt.Println(s)
	// Output:
	// hello world
}

func Example_findNodesAt() {
	b := NewBuilder()
	root, err := b.WriteSymbolNode(1, 1, 0, 0, nil, nil)
	if err != nil {
		panic(err)
	}
	image, err := b.Build(root, "", []IntervalEntry{{Start: 0, End: 4, NodeOffset: 42}})
	if err != nil {
		panic(err)
	}

	g, err := Open(image)
	if err != nil {
		panic(err)
	}
	defer g.Close()

	matches, err := g.FindNodesAt(2)
	if err != nil {
		panic(err)
	}
	fmt.Println(matches)
	// Output:
	// [@0000002A]
}
