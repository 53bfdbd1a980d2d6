// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package parser

import (
	"testing"

	"github.com/saferwall/vbaproj/internal/ast"
)

func TestParseExpressionPrecedence(t *testing.T) {
	expr, err := ParseExpression("1 + 2 * 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.Kind != ast.ExprBinary || expr.BinOp != ast.OpAdd {
		t.Fatalf("expected top-level Add, got %+v", expr)
	}
	if expr.Right.Kind != ast.ExprBinary || expr.Right.BinOp != ast.OpMul {
		t.Fatalf("expected right side Mul, got %+v", expr.Right)
	}
}

func TestParseExpressionConcatVsAdd(t *testing.T) {
	expr, err := ParseExpression(`"a" & 1 + 2`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.Kind != ast.ExprBinary || expr.BinOp != ast.OpConcat {
		t.Fatalf("expected top-level Concat (looser than +), got %+v", expr)
	}
}

func TestParseExpressionMemberAndCall(t *testing.T) {
	expr, err := ParseExpression("Foo.Bar(1, 2)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.Kind != ast.ExprCall {
		t.Fatalf("expected call, got %+v", expr)
	}
	if expr.Target.Kind != ast.ExprMember || expr.Target.Member != "Bar" {
		t.Fatalf("expected member Bar, got %+v", expr.Target)
	}
	if len(expr.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(expr.Args))
	}
}

func TestParseIfBlock(t *testing.T) {
	body, err := ParseProcedureBody("If x > 0 Then\n  y = 1\nElse\n  y = 2\nEnd If")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 1 || body[0].Kind != ast.StmtIf {
		t.Fatalf("expected single If statement, got %+v", body)
	}
	ifStmt := body[0]
	if len(ifStmt.Then) != 1 || len(ifStmt.Else) != 1 {
		t.Fatalf("expected one statement in Then and Else, got %+v", ifStmt)
	}
}

func TestParseSingleLineIf(t *testing.T) {
	body, err := ParseProcedureBody("If x > 0 Then y = 1 Else y = 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 1 || body[0].Kind != ast.StmtIf {
		t.Fatalf("expected single If statement, got %+v", body)
	}
}

func TestParseForLoop(t *testing.T) {
	body, err := ParseProcedureBody("For i = 1 To 10 Step 2\n  Total = Total + i\nNext i")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 1 || body[0].Kind != ast.StmtFor {
		t.Fatalf("expected For statement, got %+v", body)
	}
	if body[0].Counter != "i" || body[0].NextName != "i" {
		t.Fatalf("unexpected counter/next name: %+v", body[0])
	}
}

func TestParseForEach(t *testing.T) {
	body, err := ParseProcedureBody("For Each c In Cells\n  c.Value = 0\nNext")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 1 || body[0].Kind != ast.StmtForEach {
		t.Fatalf("expected ForEach statement, got %+v", body)
	}
}

func TestParseDoLoopWhile(t *testing.T) {
	body, err := ParseProcedureBody("Do While x < 10\n  x = x + 1\nLoop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 1 || body[0].Kind != ast.StmtDoLoop {
		t.Fatalf("expected DoLoop statement, got %+v", body)
	}
	if body[0].CondKind != ast.DoCondWhile || body[0].CondPos != ast.DoCondPre {
		t.Fatalf("expected pre-condition While, got %+v", body[0])
	}
}

func TestParseDoLoopUntilPost(t *testing.T) {
	body, err := ParseProcedureBody("Do\n  x = x + 1\nLoop Until x >= 10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body[0].CondKind != ast.DoCondUntil || body[0].CondPos != ast.DoCondPost {
		t.Fatalf("expected post-condition Until, got %+v", body[0])
	}
}

func TestParseSelectCase(t *testing.T) {
	src := "Select Case x\nCase 1\n  y = 1\nCase 2, 3\n  y = 2\nCase Else\n  y = 0\nEnd Select"
	body, err := ParseProcedureBody(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 1 || body[0].Kind != ast.StmtSelectCase {
		t.Fatalf("expected SelectCase statement, got %+v", body)
	}
	if len(body[0].Cases) != 3 {
		t.Fatalf("expected 3 case clauses, got %d", len(body[0].Cases))
	}
	if len(body[0].Cases[1].Conditions) != 2 {
		t.Fatalf("expected 2 conditions in second case, got %d", len(body[0].Cases[1].Conditions))
	}
}

func TestParseDimWithType(t *testing.T) {
	body, err := ParseProcedureBody("Dim x As Integer, y As String")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 1 || body[0].Kind != ast.StmtDim || len(body[0].Decls) != 2 {
		t.Fatalf("expected Dim with 2 decls, got %+v", body)
	}
	if body[0].Decls[0].TypeName != "Integer" || body[0].Decls[1].TypeName != "String" {
		t.Fatalf("unexpected decl types: %+v", body[0].Decls)
	}
}

func TestParseSetStatement(t *testing.T) {
	body, err := ParseProcedureBody("Set obj = New Collection")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 1 || body[0].Kind != ast.StmtSet {
		t.Fatalf("expected Set statement, got %+v", body)
	}
	if body[0].RHS.Kind != ast.ExprNew || body[0].RHS.ClassName != "Collection" {
		t.Fatalf("expected New Collection, got %+v", body[0].RHS)
	}
}

func TestParseWithBlock(t *testing.T) {
	body, err := ParseProcedureBody("With Sheet1\n  .Value = 1\nEnd With")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 1 || body[0].Kind != ast.StmtWith {
		t.Fatalf("expected With statement, got %+v", body)
	}
	inner := body[0].Body[0]
	if inner.LHS.Kind != ast.ExprMember || !inner.LHS.ImplicitWith {
		t.Fatalf("expected implicit-with member assignment, got %+v", inner.LHS)
	}
}

func TestParseOnErrorResumeNext(t *testing.T) {
	body, err := ParseProcedureBody("On Error Resume Next")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body[0].Kind != ast.StmtOnError || body[0].ErrorMode != ast.OnErrorResumeNext {
		t.Fatalf("expected OnErrorResumeNext, got %+v", body[0])
	}
}

func TestParseExitFor(t *testing.T) {
	body, err := ParseProcedureBody("For i = 1 To 10\n  Exit For\nNext i")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exitStmt := body[0].Body[0]
	if exitStmt.Kind != ast.StmtExit || exitStmt.ExitKind != ast.ExitFor {
		t.Fatalf("expected Exit For, got %+v", exitStmt)
	}
}

func TestParseModuleWithProcedures(t *testing.T) {
	src := "Attribute VB_Name = \"Module1\"\nOption Explicit\n\nConst Pi = 3.14\n\nPrivate Sub DoThing(x As Integer, Optional y As Integer = 1)\n  Total = x + y\nEnd Sub\n\nPublic Function Square(n As Double) As Double\n  Square = n * n\nEnd Function\n"
	mod, err := ParseModule(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mod.Declarations) != 1 {
		t.Fatalf("expected 1 module-level decl, got %d", len(mod.Declarations))
	}
	if len(mod.Procedures) != 2 {
		t.Fatalf("expected 2 procedures, got %d", len(mod.Procedures))
	}
	sub := mod.Procedures[0]
	if sub.Name != "DoThing" || sub.Kind != ProcSub || !sub.IsPrivate {
		t.Fatalf("unexpected sub: %+v", sub)
	}
	if len(sub.Params) != 2 || !sub.Params[1].Optional || sub.Params[1].Default == nil {
		t.Fatalf("unexpected params: %+v", sub.Params)
	}
	fn := mod.Procedures[1]
	if fn.Name != "Square" || fn.Kind != ProcFunction || fn.TypeName != "Double" {
		t.Fatalf("unexpected function: %+v", fn)
	}
}

func TestParseModuleSkipsBodiesAndParsesOnDemand(t *testing.T) {
	src := "Sub Good()\n  x = 1\nEnd Sub\n\nFunction Bad() As Long\n  x = (\nEnd Function\n"
	mod, err := ParseModule(src)
	if err != nil {
		t.Fatalf("ParseModule should skip bodies rather than parse them, got error: %v", err)
	}
	if len(mod.Procedures) != 2 {
		t.Fatalf("expected 2 procedures, got %d", len(mod.Procedures))
	}

	good := mod.Procedures[0]
	body, err := good.ParseBody()
	if err != nil {
		t.Fatalf("Good.ParseBody: %v", err)
	}
	if len(body) != 1 || body[0].Kind != ast.StmtAssign {
		t.Fatalf("unexpected Good body: %+v", body)
	}

	bad := mod.Procedures[1]
	if _, err := bad.ParseBody(); err == nil {
		t.Fatal("expected Bad.ParseBody to fail on its malformed statement")
	}
}

func TestParseModuleSkipProcedureBodyBalancesNestedEnd(t *testing.T) {
	src := "Sub Outer()\n  If x Then\n    y = 1\n  End If\nEnd Sub\n\nSub Next1()\n  z = 2\nEnd Sub\n"
	mod, err := ParseModule(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mod.Procedures) != 2 {
		t.Fatalf("expected 2 procedures, got %d", len(mod.Procedures))
	}
	if mod.Procedures[0].Name != "Outer" || mod.Procedures[1].Name != "Next1" {
		t.Fatalf("unexpected procedure names: %q, %q", mod.Procedures[0].Name, mod.Procedures[1].Name)
	}
	body, err := mod.Procedures[1].ParseBody()
	if err != nil || len(body) != 1 {
		t.Fatalf("unexpected Next1 body: %v, err=%v", body, err)
	}
}

func TestParseCallStatementVsAssignment(t *testing.T) {
	body, err := ParseProcedureBody("DoWork 1, 2\nx = 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(body))
	}
	if body[0].Kind != ast.StmtCall || body[1].Kind != ast.StmtAssign {
		t.Fatalf("unexpected statement kinds: %v %v", body[0].Kind, body[1].Kind)
	}
}
