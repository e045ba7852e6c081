// Command fiflow は FiFlow のAPIサーバーとクローラーのCLIです。
package main

func main() {
	Execute()
}
