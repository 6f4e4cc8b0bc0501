// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import "fmt"

type ansiColor string

const (
	colorYellow ansiColor = "\033[33m"
	colorGreen  ansiColor = "\033[32m"
	colorRed    ansiColor = "\033[31m"
	colorReset  ansiColor = "\033[0m"
)

func printColor(c ansiColor, msg string) {
	fmt.Printf("%s%s%s\n", c, msg, colorReset)
}

func PrintRed(msg string)    { printColor(colorRed, msg) }
func PrintGreen(msg string)  { printColor(colorGreen, msg) }
func PrintYellow(msg string) { printColor(colorYellow, msg) }
