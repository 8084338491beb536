package riftregex

import "fmt"

func ExampleCompile() {
	re, err := Compile(`(\w+)@(\w+)\.(\w+)`)
	if err != nil {
		fmt.Println("compile error:", err)
		return
	}
	m := re.FindStringSubmatch("contact: user@example.com")
	fmt.Println(m[1], m[2], m[3])
	// Output: user example com
}

func ExamplePattern_FindAllString() {
	re := MustCompile(`\d+`)
	fmt.Println(re.FindAllString("room 12, floor 3, desk 405", -1))
	// Output: [12 3 405]
}

func ExamplePattern_ReplaceString() {
	re := MustCompile(`(\w+)\s(\w+)`)
	fmt.Println(re.ReplaceString("John Smith", "${2} ${1}"))
	// Output: Smith John
}
