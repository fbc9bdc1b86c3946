package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	afterdo "github.com/glimte/afterdo-go"
	"github.com/glimte/afterdo-go/callbacks"
	"github.com/glimte/afterdo-go/monitor"
	"github.com/glimte/afterdo-go/objects"
	"github.com/glimte/afterdo-go/transports/rabbitmq"
	"github.com/glimte/afterdo-go/weave"
)

type sample struct {
	name  string
	short string
	run   func(env *sampleEnv) error
}

var samples = []sample{
	{name: "dog", short: "A dog that is heard barking", run: runDog},
	{name: "arguments", short: "Which values callbacks receive", run: runArguments},
	{name: "modules", short: "Callbacks on included and prepended modules", run: runModules},
	{name: "naming", short: "Alternative and custom naming", run: runNaming},
}

// sampleEnv is shared by the samples of one command run
type sampleEnv struct {
	out       io.Writer
	logger    *slog.Logger
	metrics   *monitor.SimpleMetricsCollector
	publisher *rabbitmq.EventPublisher
	attached  map[string]*afterdo.Capability
}

func (e *sampleEnv) attach(t *objects.Type) *afterdo.Capability {
	capability := afterdo.Attach(t,
		afterdo.WithLogger(e.logger),
		afterdo.WithLogging(),
		afterdo.WithMetrics(e.metrics),
	)
	e.attached[t.Name()] = capability
	return capability
}

func (e *sampleEnv) attachAlternative(t *objects.Type) *afterdo.AlternativeNaming {
	naming := afterdo.AttachAlternative(t,
		afterdo.WithLogger(e.logger),
		afterdo.WithLogging(),
		afterdo.WithMetrics(e.metrics),
	)
	e.attached[t.Name()] = afterdo.Attach(t)
	return naming
}

// publish sends an event for every after-callback run of methods when a
// broker is configured
func (e *sampleEnv) publish(capability *afterdo.Capability, methods ...string) error {
	if e.publisher == nil {
		return nil
	}
	return capability.After(e.publisher.Callback(), methods...)
}

func (e *sampleEnv) println(a ...any) {
	fmt.Fprintln(e.out, a...)
}

func (e *sampleEnv) printer(text string) objects.MethodFunc {
	return func(self *objects.Object, args ...any) (any, error) {
		e.println(text)
		return nil, nil
	}
}

type call struct {
	obj    *objects.Object
	method string
	args   []any
}

func callAll(calls ...call) error {
	for _, c := range calls {
		if _, err := c.obj.Call(c.method, c.args...); err != nil {
			return err
		}
	}
	return nil
}

func runDog(e *sampleEnv) error {
	dog := objects.NewType("Dog")
	dog.Define("bark", e.printer("Woooof"))
	dog.Define("eat", e.printer("yummie!"))

	capability := e.attach(dog)
	if err := capability.After(func(*callbacks.Payload) error {
		e.println("I just heard a dog bark!")
		return nil
	}, "bark"); err != nil {
		return err
	}
	if err := e.publish(capability, "bark", "eat"); err != nil {
		return err
	}

	dog1, dog2 := dog.New(nil), dog.New(nil)
	return callAll(
		call{obj: dog1, method: "bark"},
		call{obj: dog1, method: "eat"},
		call{obj: dog2, method: "bark"},
	)
}

func runArguments(e *sampleEnv) error {
	example := objects.NewType("Example")
	example.Define("zero", func(self *objects.Object, args ...any) (any, error) {
		return nil, nil
	})
	example.Define("two", func(self *objects.Object, args ...any) (any, error) {
		return nil, nil
	})
	example.Define("value", func(self *objects.Object, args ...any) (any, error) {
		return "some value", nil
	})

	value := func(obj *objects.Object) string {
		v, err := obj.Call("value")
		if err != nil {
			return err.Error()
		}
		return fmt.Sprint(v)
	}

	capability := e.attach(example)
	registrations := []struct {
		method string
		fn     any
	}{
		{"zero", func() { e.println("Hello!") }},
		// with no call arguments the receiver comes first
		{"zero", func(obj *objects.Object) { e.println(value(obj)) }},
		{"two", func(first, second string) { e.println(first + " " + second) }},
		{"two", func(a, b string, obj *objects.Object) { e.println(a + " " + b + " " + value(obj)) }},
		{"two", func(p *callbacks.Payload) {
			args := make([]string, 0, p.NumArgs())
			for _, a := range p.Args() {
				args = append(args, fmt.Sprint(a))
			}
			e.println("args passed to callback: " + strings.Join(args, ", "))
			e.println("just " + value(p.Receiver()))
		}},
	}
	for _, r := range registrations {
		if err := capability.AfterFunc(r.fn, r.method); err != nil {
			return err
		}
	}
	if err := e.publish(capability, "zero", "two"); err != nil {
		return err
	}

	obj := example.New(nil)
	return callAll(
		call{obj: obj, method: "zero"},
		call{obj: obj, method: "two", args: []any{"one", "two"}},
	)
}

func runModules(e *sampleEnv) error {
	m := objects.NewType("M")
	m.Define("method", func(self *objects.Object, args ...any) (any, error) {
		return nil, nil
	})

	a := objects.NewType("A", objects.WithParents(m))
	b := objects.NewType("B", objects.WithParents(m))
	c := objects.NewType("C", objects.WithParents(m))
	c.Define("method", e.printer("Overridden method"))
	d := objects.NewType("D", objects.WithPrepended(m))
	d.Define("method", e.printer("Wanna be Overriden method"))

	capability := e.attach(m)
	if err := capability.After(func(*callbacks.Payload) error {
		e.println("method called")
		return nil
	}, "method"); err != nil {
		return err
	}
	if err := e.publish(capability, "method"); err != nil {
		return err
	}

	return callAll(
		call{obj: a.New(nil), method: "method"},
		call{obj: b.New(nil), method: "method"},
		// C overrides the method, so no callback
		call{obj: c.New(nil), method: "method"},
		// M is prepended to D and wins over D's own method
		call{obj: d.New(nil), method: "method"},
	)
}

// ownNaming puts the engine behind verbs of its own
type ownNaming struct {
	core *weave.Core
}

func (n ownNaming) Later(fn callbacks.Func, methods ...string) error {
	return n.core.DefineCallback(callbacks.After, fn, methods...)
}

func (n ownNaming) Earlier(fn callbacks.Func, methods ...string) error {
	return n.core.DefineCallback(callbacks.Before, fn, methods...)
}

func (n ownNaming) ForgetItAll() {
	n.core.RemoveAllCallbacks()
}

func runNaming(e *sampleEnv) error {
	clashing := objects.NewType("MyClashingClass")
	clashing.Define("foo", func(self *objects.Object, args ...any) (any, error) {
		return 42, nil
	})
	clashing.Define("after", e.printer("the class' own after"))
	clashing.Define("before", e.printer("the class' own before"))

	naming := e.attachAlternative(clashing)
	if err := naming.AdAfter(func(*callbacks.Payload) error {
		e.println("it works")
		return nil
	}, "foo"); err != nil {
		return err
	}

	other := objects.NewType("MyOtherClashingClass")
	other.Define("foo", func(self *objects.Object, args ...any) (any, error) {
		return 42, nil
	})

	own := ownNaming{core: e.attach(other).Core()}
	if err := own.Later(func(*callbacks.Payload) error {
		e.println("my own works")
		return nil
	}, "foo"); err != nil {
		return err
	}
	if err := own.Earlier(func(*callbacks.Payload) error {
		e.println("my own earlier works")
		return nil
	}, "foo"); err != nil {
		return err
	}

	if err := callAll(
		call{obj: clashing.New(nil), method: "foo"},
		call{obj: other.New(nil), method: "foo"},
	); err != nil {
		return err
	}

	own.ForgetItAll()
	_, err := other.New(nil).Call("foo")
	return err
}
