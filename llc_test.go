package llc_test

import (
	"strings"
	"testing"

	"github.com/wicstas/llc"
	"github.com/wicstas/llc/token"
)

func TestEmptyProgram(t *testing.T) {
	p := llc.NewProgram()
	if err := p.Compile(""); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if err := p.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}

func TestFibonacciWithHostVector(t *testing.T) {
	p := llc.NewProgram()
	llc.BindIntVector(p, "vectori")

	source := `
int fibonacci_impl(int a, int b, int n) {
    if (n == 0)
        return a;
    else
        return fibonacci_impl(b, a + b, n - 1);
}

int fibonacci(int n) {
    return fibonacci_impl(0, 1, n);
}

vectori list;

for (int i = 0; i < 5; i++)
    list.push_back(fibonacci(i));
`
	if err := p.Compile(source); err != nil {
		t.Fatalf("compile failed: %v\n%s", err, p.RenderError(err))
	}
	if err := p.Run(); err != nil {
		t.Fatalf("run failed: %v\n%s", err, p.RenderError(err))
	}

	list, err := llc.As[*llc.IntVector](p.Get("list"))
	if err != nil {
		t.Fatalf("read list failed: %v", err)
	}
	want := []int{0, 1, 1, 2, 3}
	if len(*list) != len(want) {
		t.Fatalf("unexpected list: %v", *list)
	}
	for i, w := range want {
		if (*list)[i] != w {
			t.Fatalf("list[%d] = %d, want %d", i, (*list)[i], w)
		}
	}

	// call a script function from the host
	got, err := llc.As[int](p.Get("fibonacci").Call(9))
	if err != nil {
		t.Fatalf("call fibonacci failed: %v", err)
	}
	if got != 34 {
		t.Fatalf("fibonacci(9) = %d, want 34", got)
	}

	// host-side growth through the aliasing reference
	list.PushBack(99)
	again, _ := llc.As[*llc.IntVector](p.Get("list"))
	if (*again)[5] != 99 {
		t.Fatalf("alias lost: %v", *again)
	}
}

func TestScriptStructWithMethods(t *testing.T) {
	p := llc.NewProgram()
	source := `
struct Number {
    void set(int n) {
        number = n;
    }
    int get() {
        return number;
    }
    void add(float n) {
        number = number + n;
    }
    int number;
};

Number x;
x.number = 10;
`
	if err := p.Compile(source); err != nil {
		t.Fatalf("compile failed: %v\n%s", err, p.RenderError(err))
	}
	if err := p.Run(); err != nil {
		t.Fatalf("run failed: %v\n%s", err, p.RenderError(err))
	}

	if got := llc.MustAs[int](p.Get("x").Index("number")); got != 10 {
		t.Fatalf("x.number = %d, want 10", got)
	}

	if err := p.Get("x").Index("set").Call(32).Err(); err != nil {
		t.Fatalf("x.set(32) failed: %v", err)
	}
	got := llc.MustAs[int](p.Get("x").Index("get").Call())
	if got != 32 {
		t.Fatalf("x.get() = %d, want 32", got)
	}
	if err := p.Get("x").Index("add").Call(got).Err(); err != nil {
		t.Fatalf("x.add failed: %v", err)
	}
	if got := llc.MustAs[int](p.Get("x").Index("get").Call()); got != 64 {
		t.Fatalf("x.get() = %d, want 64", got)
	}
}

type vec3 struct {
	X, Y, Z float32
}

func bindVec3(p *llc.Program) {
	llc.BindType[vec3](p, "Vec3").
		Field("x", "X").
		Field("y", "Y").
		Field("z", "Z").
		Ctor(func(s string) vec3 {
			v := float32(0)
			for _, c := range s {
				if c >= '0' && c <= '9' {
					v = v*10 + float32(c-'0')
				}
			}
			return vec3{v, v, v}
		}).
		Ctor(func(v float32) vec3 { return vec3{v, v, v} }).
		Ctor(func(x, y, z float32) vec3 { return vec3{x, y, z} })
}

func TestConstructorSelection(t *testing.T) {
	p := llc.NewProgram()
	bindVec3(p)
	source := `
Vec3 a = Vec3(1, 2, 3);
Vec3 b = Vec3(4);
Vec3 c = Vec3("5");
`
	if err := p.Compile(source); err != nil {
		t.Fatalf("compile failed: %v\n%s", err, p.RenderError(err))
	}
	if err := p.Run(); err != nil {
		t.Fatalf("run failed: %v\n%s", err, p.RenderError(err))
	}

	read := func(name string) vec3 {
		t.Helper()
		v, err := llc.As[vec3](p.Get(name))
		if err != nil {
			t.Fatalf("read %s failed: %v", name, err)
		}
		return v
	}
	if got := read("a"); got != (vec3{1, 2, 3}) {
		t.Fatalf("a = %+v", got)
	}
	if got := read("b"); got != (vec3{4, 4, 4}) {
		t.Fatalf("b = %+v", got)
	}
	if got := read("c"); got != (vec3{5, 5, 5}) {
		t.Fatalf("c = %+v", got)
	}
}

func TestControlFlowSignals(t *testing.T) {
	p := llc.NewProgram()
	var printed []int
	p.BindFunction("print", func(v int) { printed = append(printed, v) })

	source := `
for (int i = 0; i < 10; i++) {
    if (i == 3)
        break;
    print(i);
}

int pick(int limit) {
    for (int i = 0; i < 100; i++) {
        if (i == limit) {
            return i;
        }
    }
    return 0 - 1;
}

int result;
result = pick(42);
`
	if err := p.Compile(source); err != nil {
		t.Fatalf("compile failed: %v\n%s", err, p.RenderError(err))
	}
	if err := p.Run(); err != nil {
		t.Fatalf("run failed: %v\n%s", err, p.RenderError(err))
	}

	if len(printed) != 3 || printed[0] != 0 || printed[1] != 1 || printed[2] != 2 {
		t.Fatalf("break did not stop the loop: %v", printed)
	}
	if got := llc.MustAs[int](p.Get("result")); got != 42 {
		t.Fatalf("return did not unwind correctly: %d", got)
	}
}

func TestBreakOutsideLoop(t *testing.T) {
	p := llc.NewProgram()
	if err := p.Compile("break;"); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if err := p.Run(); err == nil {
		t.Fatalf("break outside a loop must error")
	}
}

func TestTopLevelReturnIsSwallowed(t *testing.T) {
	p := llc.NewProgram()
	if err := p.Compile("int x; x = 1; return x;"); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if err := p.Run(); err != nil {
		t.Fatalf("top-level return must be swallowed: %v", err)
	}
}

func TestArithmeticPrecedence(t *testing.T) {
	p := llc.NewProgram()
	source := `
bool flat;
bool grouped;
flat = 1 + 2 * 3 == 7;
grouped = (1 + 2) * 3 == 9;
`
	if err := p.Compile(source); err != nil {
		t.Fatalf("compile failed: %v\n%s", err, p.RenderError(err))
	}
	if err := p.Run(); err != nil {
		t.Fatalf("run failed: %v\n%s", err, p.RenderError(err))
	}
	if !llc.MustAs[bool](p.Get("flat")) {
		t.Fatalf("1 + 2 * 3 == 7 should hold")
	}
	if !llc.MustAs[bool](p.Get("grouped")) {
		t.Fatalf("(1 + 2) * 3 == 9 should hold")
	}
}

func TestChainedAssignmentRejected(t *testing.T) {
	p := llc.NewProgram()
	err := p.Compile("int a; int b; a = b = 1;")
	if err == nil {
		t.Fatalf("chained assignment must be rejected at parse time")
	}
	if !strings.Contains(err.Error(), "chained assignment") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnknownIdentifierSpansExactly(t *testing.T) {
	p := llc.NewProgram()
	err := p.Compile("int x;\nx = banana;")
	if err == nil {
		t.Fatalf("expected unknown identifier error")
	}
	lerr, ok := err.(*token.Error)
	if !ok {
		t.Fatalf("expected a located error, got %T: %v", err, err)
	}
	if lerr.Loc.Line != 2 || lerr.Loc.Column != 5 || lerr.Loc.Length != len("banana") {
		t.Fatalf("span should cover the identifier exactly: %+v", lerr.Loc)
	}
	rendered := p.RenderError(err)
	if !strings.Contains(rendered, "~~~~~~") {
		t.Fatalf("rendered error misses the underline:\n%s", rendered)
	}
}

func TestForLoopVariableScope(t *testing.T) {
	p := llc.NewProgram()
	source := `
int total;
for (int i = 0; i < 3; i++) {
    total += i;
}
`
	if err := p.Compile(source); err != nil {
		t.Fatalf("compile failed: %v\n%s", err, p.RenderError(err))
	}
	if err := p.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := llc.MustAs[int](p.Get("total")); got != 3 {
		t.Fatalf("total = %d, want 3", got)
	}
	// the loop variable is not visible after the loop
	q := llc.NewProgram()
	if err := q.Compile("for (int i = 0; i < 3; i++) {}\ni = 1;"); err == nil {
		t.Fatalf("loop variable must not leak out of the loop")
	}
}

func TestWhileLoop(t *testing.T) {
	p := llc.NewProgram()
	source := `
int n;
n = 0;
while (n < 30)
    n += 7;
`
	if err := p.Compile(source); err != nil {
		t.Fatalf("compile failed: %v\n%s", err, p.RenderError(err))
	}
	if err := p.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := llc.MustAs[int](p.Get("n")); got != 35 {
		t.Fatalf("n = %d, want 35", got)
	}
}

func TestArrayIndexOutOfRange(t *testing.T) {
	p := llc.NewProgram()
	llc.BindIntVector(p, "vectori")
	source := `
vectori v;
v.push_back(1);
v.push_back(2);
int x;
x = v[2];
`
	if err := p.Compile(source); err != nil {
		t.Fatalf("compile failed: %v\n%s", err, p.RenderError(err))
	}
	err := p.Run()
	if err == nil {
		t.Fatalf("expected out-of-range error")
	}
	if !strings.Contains(err.Error(), "index 2 out of range [0, 2)") {
		t.Fatalf("error must carry the range and index: %v", err)
	}
}

func TestArrayElementReadWrite(t *testing.T) {
	p := llc.NewProgram()
	llc.BindIntVector(p, "vectori")
	source := `
vectori v;
v.resize(3);
v[0] = 5;
v[1] = v[0] + 2;
int first;
first = v[0];
`
	if err := p.Compile(source); err != nil {
		t.Fatalf("compile failed: %v\n%s", err, p.RenderError(err))
	}
	if err := p.Run(); err != nil {
		t.Fatalf("run failed: %v\n%s", err, p.RenderError(err))
	}
	v, err := llc.As[*llc.IntVector](p.Get("v"))
	if err != nil {
		t.Fatalf("read v failed: %v", err)
	}
	if (*v)[0] != 5 || (*v)[1] != 7 || (*v)[2] != 0 {
		t.Fatalf("unexpected vector contents: %v", *v)
	}
	if got := llc.MustAs[int](p.Get("first")); got != 5 {
		t.Fatalf("first = %d, want 5", got)
	}
}

func TestHostValueBinding(t *testing.T) {
	p := llc.NewProgram()
	if err := p.Bind("seed", 20); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	source := `
int doubled;
doubled = seed * 2;
`
	if err := p.Compile(source); err != nil {
		t.Fatalf("compile failed: %v\n%s", err, p.RenderError(err))
	}
	if err := p.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := llc.MustAs[int](p.Get("doubled")); got != 40 {
		t.Fatalf("doubled = %d, want 40", got)
	}
	// writing through the proxy is visible to a later read
	if err := p.Get("doubled").Assign(9); err != nil {
		t.Fatalf("proxy assign failed: %v", err)
	}
	if got := llc.MustAs[int](p.Get("doubled")); got != 9 {
		t.Fatalf("proxy assign lost: %d", got)
	}
}

func TestHostFieldViewTracksMutation(t *testing.T) {
	p := llc.NewProgram()
	bindVec3(p)
	source := `
Vec3 v = Vec3(1, 2, 3);
v.x = 10;
`
	if err := p.Compile(source); err != nil {
		t.Fatalf("compile failed: %v\n%s", err, p.RenderError(err))
	}
	if err := p.Run(); err != nil {
		t.Fatalf("run failed: %v\n%s", err, p.RenderError(err))
	}
	got, err := llc.As[vec3](p.Get("v"))
	if err != nil {
		t.Fatalf("read v failed: %v", err)
	}
	if got != (vec3{10, 2, 3}) {
		t.Fatalf("v = %+v", got)
	}
	// a member proxy is a reference view
	if err := p.Get("v").Index("y").Assign(float32(20)); err != nil {
		t.Fatalf("member assign failed: %v", err)
	}
	got, _ = llc.As[vec3](p.Get("v"))
	if got.Y != 20 {
		t.Fatalf("member view did not alias: %+v", got)
	}
}

func TestReturnTypeMismatch(t *testing.T) {
	p := llc.NewProgram()
	source := `
int wrong(int n) {
    return "nope";
}
int x;
x = wrong(1);
`
	if err := p.Compile(source); err != nil {
		t.Fatalf("compile failed: %v\n%s", err, p.RenderError(err))
	}
	err := p.Run()
	if err == nil {
		t.Fatalf("expected return-type mismatch")
	}
	if !strings.Contains(err.Error(), "returns type") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVoidInExpression(t *testing.T) {
	p := llc.NewProgram()
	p.BindFunction("noop", func() {})
	source := `
int x;
x = noop();
`
	if err := p.Compile(source); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if err := p.Run(); err == nil {
		t.Fatalf("void in expression must error")
	}
}

func TestBindCollisions(t *testing.T) {
	p := llc.NewProgram()
	if err := p.BindFunction("f", func() {}); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if err := p.BindFunction("f", func() {}); err == nil {
		t.Fatalf("function name collision must fail at bind time")
	}
}

func TestBindTypeUnknownFieldFailsEarly(t *testing.T) {
	p := llc.NewProgram()
	llc.BindType[vec3](p, "V").Field("w", "W")
	if err := p.Compile(""); err == nil {
		t.Fatalf("binding an unknown Go field must surface at compile")
	}
}

func TestEval(t *testing.T) {
	p := llc.NewProgram()
	if _, _, err := p.Eval("int x;"); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if _, _, err := p.Eval("x = 41;"); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	out, has, err := p.Eval("x + 1;")
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if !has || out != "42" {
		t.Fatalf("eval result = %q (%v), want 42", out, has)
	}
}

func TestCharAndStringLiterals(t *testing.T) {
	p := llc.NewProgram()
	source := `
string s;
s = "he" + "llo";
uint8_t c;
c = 'A';
`
	if err := p.Compile(source); err != nil {
		t.Fatalf("compile failed: %v\n%s", err, p.RenderError(err))
	}
	if err := p.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := llc.MustAs[string](p.Get("s")); got != "hello" {
		t.Fatalf("s = %q", got)
	}
	if got := llc.MustAs[uint8](p.Get("c")); got != 'A' {
		t.Fatalf("c = %q", got)
	}
}
