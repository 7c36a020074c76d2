package packer

import "fmt"

func ExamplePack() {
	items := []Item{
		{Index: 0, Width: 30, Height: 20},
		{Index: 1, Width: 10, Height: 10},
		{Index: 2, Width: 30, Height: 20},
	}
	plan, err := Pack(items, Options{MaxWidth: 64, MaxHeight: 64, Padding: 1, Extrude: 1, PowerOfTwo: true})
	if err != nil {
		panic(err)
	}
	for _, p := range plan.Placements {
		fmt.Printf("item %d: page %d content %v\n", p.Index, p.Page, p.Content(plan.Options.Margin()))
	}
	fmt.Printf("page 0: %dx%d\n", plan.Pages[0].Width, plan.Pages[0].Height)
	// Output:
	// item 0: page 0 content (2,2)-(32,22)
	// item 1: page 0 content (2,50)-(12,60)
	// item 2: page 0 content (2,26)-(32,46)
	// page 0: 64x64
}
