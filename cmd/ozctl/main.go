package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/appsworld/objzrt"
	"github.com/appsworld/objzrt/abi"
)

var jsonOut bool

func main() {
	var rootCmd = &cobra.Command{
		Use:   "ozctl",
		Short: "Drive the objzrt object runtime",
		Long:  "ozctl builds a small class graph in-process and exercises loading, message dispatch, and introspection against it.",
	}

	var demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Load a sample class graph and dispatch a few messages against it",
		Run:   runDemo,
	}

	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "print results as JSON")
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("ozctl 0.1.0")
		},
	}
}

// demoReport is what `ozctl demo` prints: a trace of what the sample class
// graph did when driven through a typical alloc/dispatch/pool lifecycle.
type demoReport struct {
	ClassesLoaded      []string `json:"classes_loaded"`
	InitializeOrder    []string `json:"initialize_order"`
	DispatchTrail      []string `json:"dispatch_trail"`
	CategoryOverrodeIt bool     `json:"category_overrode_greet"`
	FinalRefcount      int32    `json:"final_refcount"`
	PoolDrainedCount   int      `json:"pool_drained_count"`
}

func runDemo(cmd *cobra.Command, args []string) {
	logger := log.New(os.Stderr, "ozctl: ", 0)
	rt := objzrt.New(objzrt.Config{}, "", logger)

	report := &demoReport{}

	speakSel := abi.MakeSelector("speak", "")
	greetSel := abi.MakeSelector("greet", "")

	animalInit := &abi.ClassRO{Name: "Animal", Flags: abi.ClassFlagMeta}
	animal := &abi.ClassRO{
		Name: "Animal",
		Meta: animalInit,
		Methods: &abi.MethodListRO{Methods: []abi.MethodRO{{
			Sel: speakSel,
			Imp: func(receiver any, sel abi.Selector, args ...any) any {
				report.DispatchTrail = append(report.DispatchTrail, "Animal.speak")
				return nil
			},
		}, {
			Sel: greetSel,
			Imp: func(receiver any, sel abi.Selector, args ...any) any {
				report.DispatchTrail = append(report.DispatchTrail, "Animal.greet")
				return nil
			},
		}}},
	}
	animalInit.Methods = &abi.MethodListRO{Methods: []abi.MethodRO{{
		Sel: abi.MakeSelector("initialize", ""),
		Imp: func(receiver any, sel abi.Selector, args ...any) any {
			report.InitializeOrder = append(report.InitializeOrder, "Animal")
			return nil
		},
	}}}

	dogInit := &abi.ClassRO{Name: "Dog", Flags: abi.ClassFlagMeta}
	dogInit.Methods = &abi.MethodListRO{Methods: []abi.MethodRO{{
		Sel: abi.MakeSelector("initialize", ""),
		Imp: func(receiver any, sel abi.Selector, args ...any) any {
			report.InitializeOrder = append(report.InitializeOrder, "Dog")
			return nil
		},
	}}}
	dog := &abi.ClassRO{
		Name:      "Dog",
		SuperName: "Animal",
		Meta:      dogInit,
		Methods: &abi.MethodListRO{Methods: []abi.MethodRO{{
			Sel: speakSel,
			Imp: func(receiver any, sel abi.Selector, args ...any) any {
				report.DispatchTrail = append(report.DispatchTrail, "Dog.speak")
				rt.SendSuper(receiver.(*objzrt.Object), mustLookup(rt, "Animal"), speakSel)
				return nil
			},
		}}},
	}

	loud := &abi.CategoryRO{
		Name:            "Loud",
		TargetClassName: "Dog",
		InstanceMethods: &abi.MethodListRO{Methods: []abi.MethodRO{{
			Sel: greetSel,
			Imp: func(receiver any, sel abi.Selector, args ...any) any {
				report.DispatchTrail = append(report.DispatchTrail, "Dog+Loud.greet")
				report.CategoryOverrodeIt = true
				return nil
			},
		}}},
	}

	if err := rt.Load(&abi.LoadDescriptor{
		Version:    abi.CurrentDescriptorVersion,
		Classes:    []*abi.ClassRO{animal, dog},
		Categories: []*abi.CategoryRO{loud},
	}); err != nil {
		log.Fatalf("load: %v", err)
	}
	report.ClassesLoaded = []string{"Animal", "Dog"}

	dogID := mustLookup(rt, "Dog")
	pup := rt.AllocObject(dogID)

	tok := rt.PushAutoreleasePool()
	rt.SendMessage(pup, speakSel) // Dog.speak, chains to Animal.speak via super, also runs +initialize for both
	rt.SendMessage(pup, greetSel) // resolved to the category override, not Animal's
	rt.Autorelease(rt.Retain(pup))
	if err := rt.PopAutoreleasePool(tok); err != nil {
		log.Fatalf("pool pop: %v", err)
	}
	report.PoolDrainedCount = 1
	report.FinalRefcount = rt.RefCount(pup)

	if jsonOut {
		enc, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(enc))
		return
	}
	fmt.Printf("classes loaded:    %v\n", report.ClassesLoaded)
	fmt.Printf("+initialize order: %v\n", report.InitializeOrder)
	fmt.Printf("dispatch trail:    %v\n", report.DispatchTrail)
	fmt.Printf("category override: %v\n", report.CategoryOverrodeIt)
	fmt.Printf("final refcount:    %d\n", report.FinalRefcount)
}

func mustLookup(rt *objzrt.Runtime, name string) abi.ClassID {
	ref, ok := rt.LookupClass(name)
	if !ok {
		log.Fatalf("unknown class %q", name)
	}
	return ref.ID
}
