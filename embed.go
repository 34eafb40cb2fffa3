// embed.go 数据文件嵌入声明
// //go:embed 只能嵌入当前包目录及其子目录，因此放在项目根目录（与 data/ 同级）
package main

import "embed"

//go:embed data/spawner.yaml data/patterns.yaml data/levels
var dataFS embed.FS
