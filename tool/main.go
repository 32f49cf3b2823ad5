package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"strconv"

	"github.com/alecthomas/participle"

	. "github.com/dave/jennifer/jen"
)

type TypeDecls struct {
	Declarations []*Declaration `@@*`
}

type TCase struct {
	Name string `@Ident "of"`
	Kind string `(@Ident | @String | @RawString)`
}

type Declaration struct {
	Name  string   `"type" @Ident "="`
	Plain *string  `(  (@Ident | @String | @RawString)`
	Many  *[]TCase ` | ("|" (@@))*)`
	I     struct{} `";"`
}

func unquote(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s
}

// GenerateDecls emits, for every sum type, a Kind enumeration with one
// constant per case, a generic Visitor with one method per case and a
// Dispatch function switching over all of them. Passes implement Visitor,
// so adding a case breaks every pass that does not handle it.
func GenerateDecls(pkgname string, t *TypeDecls) string {
	f := NewFile(pkgname)
	f.HeaderComment("Code generated by adtGen from nodes.adt. DO NOT EDIT.")

	for _, decl := range t.Declarations {
		if decl.Plain != nil {
			f.Type().Id(decl.Name).Id(*decl.Plain)
			continue
		}
		if decl.Many == nil {
			continue
		}

		cases := *decl.Many

		f.Comment("Kind identifies the variant of a " + decl.Name + ".")
		f.Type().Id("Kind").Int()

		var consts []Code
		for idx, it := range cases {
			if idx == 0 {
				consts = append(consts, Id("Kind"+it.Name).Id("Kind").Op("=").Iota())
			} else {
				consts = append(consts, Id("Kind"+it.Name))
			}
		}
		f.Const().Defs(consts...)

		var names []Code
		for _, it := range cases {
			names = append(names, Case(Id("Kind"+it.Name)).Block(Return(Lit(it.Name))))
		}
		f.Func().Params(Id("k").Id("Kind")).Id("String").Params().String().Block(
			Switch(Id("k")).Block(names...),
			Return(Qual("fmt", "Sprintf").Call(Lit("Kind(%d)"), Int().Call(Id("k")))),
		)

		var methods []Code
		for _, it := range cases {
			methods = append(methods,
				Comment(fmt.Sprintf("Visit%s handles %s.", it.Name, unquote(it.Kind))),
				Id("Visit"+it.Name).Params(Id("id").Id("NodeID")).Id("R"),
			)
		}
		f.Comment("Visitor handles every variant of a " + decl.Name + ".")
		f.Type().Id("Visitor").Types(Id("R").Any()).Interface(methods...)

		var dispatch []Code
		for _, it := range cases {
			dispatch = append(dispatch, Case(Id("Kind"+it.Name)).Block(
				Return(Id("v").Dot("Visit"+it.Name).Call(Id("id"))),
			))
		}
		f.Comment("Dispatch calls the Visitor method matching the kind of node id.")
		f.Func().Id("Dispatch").Types(Id("R").Any()).Params(
			Id("a").Op("*").Id("Arena"),
			Id("id").Id("NodeID"),
			Id("v").Id("Visitor").Types(Id("R")),
		).Id("R").Block(
			Switch(Id("a").Dot("Kind").Call(Id("id"))).Block(dispatch...),
			Panic(Qual("fmt", "Sprintf").Call(Lit("ast: node %d has unknown kind %s"), Id("id"), Id("a").Dot("Kind").Call(Id("id")))),
		)
	}

	return fmt.Sprintf("%#v", f)
}

func main() {
	parser := participle.MustBuild(&TypeDecls{})

	in := os.Args[1]
	out := os.Args[2]
	pkgname := os.Args[3]

	inData, err := ioutil.ReadFile(in)
	if err != nil {
		panic(err)
	}

	ast := TypeDecls{}
	err = parser.ParseBytes(inData, &ast)
	if err != nil {
		panic(err)
	}

	err = ioutil.WriteFile(out, []byte(GenerateDecls(pkgname, &ast)), 0644)
	if err != nil {
		panic(err)
	}
}
