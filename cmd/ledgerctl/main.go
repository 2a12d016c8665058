// ledgerctl 账本运维命令行
//
//	ledgerctl migrate                               迁移表结构
//	ledgerctl publish 9780132350884 --title ... --year 2008 --price 29.99 --stock 10
//	ledgerctl restock 9780132350884 --added 20      补货
//	ledgerctl set-price 9780132350884 34.50         调价
//	ledgerctl token --user 1 --role admin           签发调试用Token
//	ledgerctl events                                打印订单事件
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
